package core

import (
	"fmt"
	"slices"

	"goni/internal/agents"
)

const defaultScript = "start"

type translateFunc func(r *Resolver, agent agents.Agent, args []string, rctx RunnerContext) (ResolvedCommand, error)

type translator struct {
	op       Operation
	resolver *Resolver
	fn       translateFunc
}

func (t *translator) Operation() Operation { return t.op }

func (t *translator) Translate(agent agents.Agent, args []string, rctx RunnerContext) (ResolvedCommand, error) {
	return t.fn(t.resolver, agent, args, rctx)
}

// Translators возвращает трансляторы всех операций поверх одного резолвера.
func Translators(r *Resolver) []Translator {
	fns := map[Operation]translateFunc{
		OpInstall:   translateInstall,
		OpRun:       translateRun,
		OpUpgrade:   translateUpgrade,
		OpUninstall: translateUninstall,
		OpExecute:   passthrough(agents.VerbExecute),
		OpAgent:     passthrough(agents.VerbAgent),
	}
	out := make([]Translator, 0, len(Operations))
	for _, op := range Operations {
		out = append(out, &translator{op: op, resolver: r, fn: fns[op]})
	}
	return out
}

func translateInstall(r *Resolver, agent agents.Agent, args []string, rctx RunnerContext) (ResolvedCommand, error) {
	if agent == agents.Bun {
		args = rewriteDevFlag(args)
	}
	flags := scanFlags(args, FlagGlobal, FlagFrozenIfPresent, FlagFrozen)
	switch {
	case flags.has(FlagGlobal):
		return r.Resolve(agent, agents.VerbGlobal, Exclude(args, string(FlagGlobal)))
	case flags.has(FlagFrozenIfPresent):
		if rctx.HasLock == nil {
			return ResolvedCommand{}, fmt.Errorf("%s needs lockfile presence: %w", FlagFrozenIfPresent, ErrContextContract)
		}
		verb := agents.VerbInstall
		if *rctx.HasLock {
			verb = agents.VerbFrozen
		}
		rest := Exclude(Exclude(args, string(FlagFrozenIfPresent)), string(FlagGlobal))
		return r.Resolve(agent, verb, rest)
	case flags.has(FlagFrozen):
		return r.Resolve(agent, agents.VerbFrozen, Exclude(args, string(FlagFrozen)))
	case allFlags(args):
		return r.Resolve(agent, agents.VerbInstall, args)
	default:
		return r.Resolve(agent, agents.VerbAdd, args)
	}
}

func translateRun(r *Resolver, agent agents.Agent, args []string, _ RunnerContext) (ResolvedCommand, error) {
	if len(args) == 0 {
		args = []string{defaultScript}
	}
	ifPresent := scanFlags(args, FlagIfPresent).has(FlagIfPresent)
	if ifPresent {
		args = Exclude(args, string(FlagIfPresent))
	}
	cmd, err := r.Resolve(agent, agents.VerbRun, args)
	if err != nil {
		return ResolvedCommand{}, err
	}
	if ifPresent {
		// Флаг встает сразу после ключевого слова run агента, до имени скрипта.
		cmd.Args = slices.Insert(cmd.Args, min(1, len(cmd.Args)), string(FlagIfPresent))
	}
	return cmd, nil
}

func translateUpgrade(r *Resolver, agent agents.Agent, args []string, _ RunnerContext) (ResolvedCommand, error) {
	if scanFlags(args, FlagInteractive).has(FlagInteractive) {
		return r.Resolve(agent, agents.VerbUpgradeInteractive, Exclude(args, string(FlagInteractive)))
	}
	return r.Resolve(agent, agents.VerbUpgrade, args)
}

func translateUninstall(r *Resolver, agent agents.Agent, args []string, _ RunnerContext) (ResolvedCommand, error) {
	if scanFlags(args, FlagGlobal).has(FlagGlobal) {
		return r.Resolve(agent, agents.VerbGlobalUninstall, Exclude(args, string(FlagGlobal)))
	}
	return r.Resolve(agent, agents.VerbUninstall, args)
}

func passthrough(verb agents.Verb) translateFunc {
	return func(r *Resolver, agent agents.Agent, args []string, _ RunnerContext) (ResolvedCommand, error) {
		return r.Resolve(agent, verb, args)
	}
}

// IsGlobal сообщает, адресована ли операция глобальным пакетам.
func IsGlobal(op Operation, args []string) bool {
	if op != OpInstall && op != OpUninstall {
		return false
	}
	return scanFlags(args, FlagGlobal).has(FlagGlobal)
}
