package agents

import (
	"fmt"
	"sort"
	"strings"
)

// Agent идентифицирует пакетный менеджер.
type Agent string

const (
	NPM       Agent = "npm"
	Yarn      Agent = "yarn"
	YarnBerry Agent = "yarn@berry"
	PNPM      Agent = "pnpm"
	PNPM6     Agent = "pnpm@6"
	Bun       Agent = "bun"
	Deno      Agent = "deno"
)

// Verb задает ключ второго уровня в таблице шаблонов.
type Verb string

const (
	VerbAgent              Verb = "agent"
	VerbRun                Verb = "run"
	VerbInstall            Verb = "install"
	VerbFrozen             Verb = "frozen"
	VerbGlobal             Verb = "global"
	VerbAdd                Verb = "add"
	VerbUpgrade            Verb = "upgrade"
	VerbUpgradeInteractive Verb = "upgrade-interactive"
	VerbExecute            Verb = "execute"
	VerbUninstall          Verb = "uninstall"
	VerbGlobalUninstall    Verb = "global_uninstall"
)

// Verbs перечисляет все ключи, которые используют трансляторы.
var Verbs = []Verb{
	VerbAgent,
	VerbRun,
	VerbInstall,
	VerbFrozen,
	VerbGlobal,
	VerbAdd,
	VerbUpgrade,
	VerbUpgradeInteractive,
	VerbExecute,
	VerbUninstall,
	VerbGlobalUninstall,
}

// Плейсхолдеры шаблона. Все прочие токены вида {...} считаются ошибкой.
const (
	TokenArgs  = "{args}"
	TokenFirst = "{first}"
	TokenRest  = "{rest}"
	// TokenSep раскрывается в "--", только если {rest} не пуст.
	TokenSep = "{sep}"
)

// Template описывает команду агента: исполняемый файл и токены аргументов.
type Template struct {
	Exec string
	Args []string
}

// Table отображает agent -> verb -> template.
// nil-шаблон означает, что агент явно не поддерживает verb.
type Table map[Agent]map[Verb]*Template

func tpl(exec string, args ...string) *Template {
	return &Template{Exec: exec, Args: args}
}

// DefaultTable возвращает встроенную таблицу; каждый вызов строит новую копию.
func DefaultTable() Table {
	npm := map[Verb]*Template{
		VerbAgent:              tpl("npm", TokenArgs),
		VerbRun:                tpl("npm", "run", TokenFirst, TokenSep, TokenRest),
		VerbInstall:            tpl("npm", "i", TokenArgs),
		VerbFrozen:             tpl("npm", "ci", TokenArgs),
		VerbGlobal:             tpl("npm", "i", "-g", TokenArgs),
		VerbAdd:                tpl("npm", "i", TokenArgs),
		VerbUpgrade:            tpl("npm", "update", TokenArgs),
		VerbUpgradeInteractive: nil,
		VerbExecute:            tpl("npx", TokenArgs),
		VerbUninstall:          tpl("npm", "uninstall", TokenArgs),
		VerbGlobalUninstall:    tpl("npm", "uninstall", "-g", TokenArgs),
	}
	yarn := map[Verb]*Template{
		VerbAgent:              tpl("yarn", TokenArgs),
		VerbRun:                tpl("yarn", "run", TokenArgs),
		VerbInstall:            tpl("yarn", "install", TokenArgs),
		VerbFrozen:             tpl("yarn", "install", "--frozen-lockfile", TokenArgs),
		VerbGlobal:             tpl("yarn", "global", "add", TokenArgs),
		VerbAdd:                tpl("yarn", "add", TokenArgs),
		VerbUpgrade:            tpl("yarn", "upgrade", TokenArgs),
		VerbUpgradeInteractive: tpl("yarn", "upgrade-interactive", TokenArgs),
		VerbExecute:            tpl("npx", TokenArgs),
		VerbUninstall:          tpl("yarn", "remove", TokenArgs),
		VerbGlobalUninstall:    tpl("yarn", "global", "remove", TokenArgs),
	}
	berry := cloneVerbs(yarn)
	berry[VerbFrozen] = tpl("yarn", "install", "--immutable", TokenArgs)
	berry[VerbUpgrade] = tpl("yarn", "up", TokenArgs)
	berry[VerbUpgradeInteractive] = tpl("yarn", "up", "-i", TokenArgs)
	berry[VerbExecute] = tpl("yarn", "dlx", TokenArgs)
	// yarn 2+ убрал global, используем npm.
	berry[VerbGlobal] = tpl("npm", "i", "-g", TokenArgs)
	berry[VerbGlobalUninstall] = tpl("npm", "uninstall", "-g", TokenArgs)

	pnpm := map[Verb]*Template{
		VerbAgent:              tpl("pnpm", TokenArgs),
		VerbRun:                tpl("pnpm", "run", TokenArgs),
		VerbInstall:            tpl("pnpm", "i", TokenArgs),
		VerbFrozen:             tpl("pnpm", "i", "--frozen-lockfile", TokenArgs),
		VerbGlobal:             tpl("pnpm", "add", "-g", TokenArgs),
		VerbAdd:                tpl("pnpm", "add", TokenArgs),
		VerbUpgrade:            tpl("pnpm", "update", TokenArgs),
		VerbUpgradeInteractive: tpl("pnpm", "update", "-i", TokenArgs),
		VerbExecute:            tpl("pnpm", "dlx", TokenArgs),
		VerbUninstall:          tpl("pnpm", "remove", TokenArgs),
		VerbGlobalUninstall:    tpl("pnpm", "remove", "--global", TokenArgs),
	}
	pnpm6 := cloneVerbs(pnpm)
	pnpm6[VerbRun] = tpl("pnpm", "run", TokenFirst, TokenSep, TokenRest)

	bun := map[Verb]*Template{
		VerbAgent:              tpl("bun", TokenArgs),
		VerbRun:                tpl("bun", "run", TokenArgs),
		VerbInstall:            tpl("bun", "install", TokenArgs),
		VerbFrozen:             tpl("bun", "install", "--frozen-lockfile", TokenArgs),
		VerbGlobal:             tpl("bun", "add", "-g", TokenArgs),
		VerbAdd:                tpl("bun", "add", TokenArgs),
		VerbUpgrade:            tpl("bun", "update", TokenArgs),
		VerbUpgradeInteractive: tpl("bun", "update", TokenArgs),
		VerbExecute:            tpl("bunx", TokenArgs),
		VerbUninstall:          tpl("bun", "remove", TokenArgs),
		VerbGlobalUninstall:    tpl("bun", "remove", "-g", TokenArgs),
	}
	deno := map[Verb]*Template{
		VerbAgent:              tpl("deno", TokenArgs),
		VerbRun:                tpl("deno", "task", TokenArgs),
		VerbInstall:            tpl("deno", "install", TokenArgs),
		VerbFrozen:             tpl("deno", "install", "--frozen", TokenArgs),
		VerbGlobal:             tpl("deno", "install", "-g", TokenArgs),
		VerbAdd:                tpl("deno", "add", TokenArgs),
		VerbUpgrade:            tpl("deno", "outdated", "--update", TokenArgs),
		VerbUpgradeInteractive: tpl("deno", "outdated", "--update", TokenArgs),
		VerbExecute:            tpl("deno", "run", TokenArgs),
		VerbUninstall:          tpl("deno", "remove", TokenArgs),
		VerbGlobalUninstall:    tpl("deno", "uninstall", "-g", TokenArgs),
	}

	return Table{
		NPM:       npm,
		Yarn:      yarn,
		YarnBerry: berry,
		PNPM:      pnpm,
		PNPM6:     pnpm6,
		Bun:       bun,
		Deno:      deno,
	}
}

func cloneVerbs(src map[Verb]*Template) map[Verb]*Template {
	out := make(map[Verb]*Template, len(src))
	for verb, t := range src {
		if t == nil {
			out[verb] = nil
			continue
		}
		cp := *t
		cp.Args = append([]string(nil), t.Args...)
		out[verb] = &cp
	}
	return out
}

// Agents возвращает отсортированный список агентов таблицы.
func (t Table) Agents() []Agent {
	names := make([]Agent, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Lookup возвращает шаблон. agentOK=false, если агента нет в таблице;
// verbOK=false, если verb не задан или явно отключен.
func (t Table) Lookup(agent Agent, verb Verb) (tmpl Template, agentOK, verbOK bool) {
	verbs, ok := t[agent]
	if !ok {
		return Template{}, false, false
	}
	p, ok := verbs[verb]
	if !ok || p == nil {
		return Template{}, true, false
	}
	return *p, true, true
}

// Missing перечисляет пары agent/verb без шаблона в формате "agent/verb".
func (t Table) Missing(verbs []Verb) []string {
	var out []string
	for _, agent := range t.Agents() {
		for _, verb := range verbs {
			if _, _, ok := t.Lookup(agent, verb); !ok {
				out = append(out, fmt.Sprintf("%s/%s", agent, verb))
			}
		}
	}
	return out
}

// Merge накладывает переопределения из конфига поверх таблицы.
// Список токенов начинается с исполняемого файла; nil отключает verb.
// Пустой (не nil) список дает шаблон без исполняемого файла,
// который резолвер отклонит как некорректный.
func (t Table) Merge(overrides map[string]map[string][]string) Table {
	out := make(Table, len(t)+len(overrides))
	for agent, verbs := range t {
		out[agent] = cloneVerbs(verbs)
	}
	for agentName, verbs := range overrides {
		agent := Agent(strings.TrimSpace(agentName))
		if agent == "" {
			continue
		}
		if out[agent] == nil {
			out[agent] = make(map[Verb]*Template, len(verbs))
		}
		for verbName, tokens := range verbs {
			verb := Verb(strings.TrimSpace(verbName))
			if tokens == nil {
				out[agent][verb] = nil
				continue
			}
			if len(tokens) == 0 {
				out[agent][verb] = &Template{}
				continue
			}
			out[agent][verb] = tpl(tokens[0], append([]string(nil), tokens[1:]...)...)
		}
	}
	return out
}
