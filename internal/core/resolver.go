package core

import (
	"errors"
	"fmt"
	"strings"

	"goni/internal/agents"
)

var (
	ErrUnsupportedAgent = errors.New("unsupported agent")
	ErrUnsupportedVerb  = errors.New("unsupported verb")
	ErrTemplate         = errors.New("malformed command template")
	ErrContextContract  = errors.New("runner context contract violation")
)

// LookupError описывает неудачное разрешение пары agent/verb.
type LookupError struct {
	Agent agents.Agent
	Verb  agents.Verb
	Err   error
}

func (e *LookupError) Error() string {
	switch {
	case errors.Is(e.Err, ErrUnsupportedAgent):
		return fmt.Sprintf("unsupported agent '%s'", e.Agent)
	case errors.Is(e.Err, ErrUnsupportedVerb):
		return fmt.Sprintf("command '%s' is not supported by agent '%s'", e.Verb, e.Agent)
	default:
		return fmt.Sprintf("%s %s: %v", e.Agent, e.Verb, e.Err)
	}
}

func (e *LookupError) Unwrap() error { return e.Err }

// Resolver ищет шаблоны в таблице и подставляет в них аргументы.
// Таблица только читается, поэтому Resolver безопасен для конкурентного использования.
type Resolver struct {
	table agents.Table
}

// NewResolver создает резолвер поверх готовой таблицы.
func NewResolver(table agents.Table) *Resolver {
	return &Resolver{table: table}
}

// Resolve возвращает команду для agent/verb с подставленными args.
func (r *Resolver) Resolve(agent agents.Agent, verb agents.Verb, args []string) (ResolvedCommand, error) {
	tmpl, agentOK, verbOK := r.table.Lookup(agent, verb)
	if !agentOK {
		return ResolvedCommand{}, &LookupError{Agent: agent, Verb: verb, Err: ErrUnsupportedAgent}
	}
	if !verbOK {
		return ResolvedCommand{}, &LookupError{Agent: agent, Verb: verb, Err: ErrUnsupportedVerb}
	}
	out, err := interpolate(tmpl, args)
	if err != nil {
		return ResolvedCommand{}, &LookupError{Agent: agent, Verb: verb, Err: err}
	}
	return ResolvedCommand{Command: tmpl.Exec, Args: out}, nil
}

func interpolate(tmpl agents.Template, args []string) ([]string, error) {
	if strings.TrimSpace(tmpl.Exec) == "" {
		return nil, fmt.Errorf("empty executable: %w", ErrTemplate)
	}
	out := make([]string, 0, len(tmpl.Args)+len(args)+1)
	for _, tok := range tmpl.Args {
		switch tok {
		case agents.TokenArgs:
			out = append(out, args...)
		case agents.TokenFirst:
			if len(args) > 0 {
				out = append(out, args[0])
			}
		case agents.TokenRest:
			if len(args) > 1 {
				out = append(out, args[1:]...)
			}
		case agents.TokenSep:
			if len(args) > 1 {
				out = append(out, "--")
			}
		default:
			if isPlaceholder(tok) {
				return nil, fmt.Errorf("unknown placeholder %q: %w", tok, ErrTemplate)
			}
			out = append(out, tok)
		}
	}
	return out, nil
}

func isPlaceholder(tok string) bool {
	return len(tok) > 2 && strings.HasPrefix(tok, "{") && strings.HasSuffix(tok, "}")
}
