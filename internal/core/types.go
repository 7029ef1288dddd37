package core

import "goni/internal/agents"

// Operation задает каноническую команду, не зависящую от агента.
type Operation string

const (
	OpInstall   Operation = "install"
	OpRun       Operation = "run"
	OpUpgrade   Operation = "upgrade"
	OpUninstall Operation = "uninstall"
	OpExecute   Operation = "execute"
	OpAgent     Operation = "agent"
)

// Operations перечисляет все канонические операции.
var Operations = []Operation{OpInstall, OpRun, OpUpgrade, OpUninstall, OpExecute, OpAgent}

var aliases = map[string]Operation{
	"ni":  OpInstall,
	"nr":  OpRun,
	"nu":  OpUpgrade,
	"nun": OpUninstall,
	"nlx": OpExecute,
	"na":  OpAgent,
}

// ParseOperation принимает каноническое имя или короткий алиас (ni, nr, ...).
func ParseOperation(name string) (Operation, bool) {
	if op, ok := aliases[name]; ok {
		return op, true
	}
	for _, op := range Operations {
		if string(op) == name {
			return op, true
		}
	}
	return "", false
}

// AliasOperation распознает только короткие алиасы; используется для argv[0].
func AliasOperation(name string) (Operation, bool) {
	op, ok := aliases[name]
	return op, ok
}

// ResolvedCommand описывает готовую команду: исполняемый файл и аргументы.
type ResolvedCommand struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// String возвращает сериализованную форму команды.
func (c ResolvedCommand) String() string {
	return Serialize(c)
}

// RunnerContext содержит параметры конкретного вызова.
// HasLock обязателен для --frozen-if-present; nil означает, что вызывающий
// не определил наличие lock-файла.
type RunnerContext struct {
	Programmatic bool
	HasLock      *bool
	Cwd          string
}

// WithLock возвращает копию контекста с заданным признаком lock-файла.
func (c RunnerContext) WithLock(has bool) RunnerContext {
	c.HasLock = &has
	return c
}

// Translator превращает сырые аргументы операции в команду агента.
type Translator interface {
	Operation() Operation
	Translate(agent agents.Agent, args []string, rctx RunnerContext) (ResolvedCommand, error)
}
