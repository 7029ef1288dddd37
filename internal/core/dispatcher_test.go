package core

import (
	"errors"
	"testing"

	"goni/internal/agents"
)

type fakeTranslator struct {
	op  Operation
	err error
}

func (f *fakeTranslator) Operation() Operation { return f.op }

func (f *fakeTranslator) Translate(agent agents.Agent, args []string, rctx RunnerContext) (ResolvedCommand, error) {
	if f.err != nil {
		return ResolvedCommand{}, f.err
	}
	return ResolvedCommand{Command: string(agent), Args: args}, nil
}

func TestRegisterAndExecute(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeTranslator{op: "ping"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := r.Execute("ping", "npm", []string{"x"}, RunnerContext{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.Command != "npm" || len(got.Args) != 1 || got.Args[0] != "x" {
		t.Fatalf("unexpected command: %#v", got)
	}
}

func TestDuplicateTranslator(t *testing.T) {
	r := NewRegistry()
	tr := &fakeTranslator{op: "dup"}
	if err := r.Register(tr); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(tr); !errors.Is(err, errTranslatorExists) {
		t.Fatalf("expected errTranslatorExists, got %v", err)
	}
}

func TestRegisterInvalid(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nil); !errors.Is(err, errInvalidArguments) {
		t.Fatalf("expected errInvalidArguments for nil, got %v", err)
	}
	if err := r.Register(&fakeTranslator{}); !errors.Is(err, errInvalidArguments) {
		t.Fatalf("expected errInvalidArguments for empty op, got %v", err)
	}
}

func TestUnknownOperation(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute("none", "npm", nil, RunnerContext{})
	if !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestDefaultRegistryCoversAllOperations(t *testing.T) {
	r := newTestRegistry(t)
	got := r.Operations()
	if len(got) != len(Operations) {
		t.Fatalf("registered %v, want all of %v", got, Operations)
	}
}

func TestParseOperation(t *testing.T) {
	tests := map[string]Operation{
		"ni": OpInstall, "install": OpInstall,
		"nr": OpRun, "run": OpRun,
		"nu": OpUpgrade, "nun": OpUninstall,
		"nlx": OpExecute, "execute": OpExecute,
		"na": OpAgent, "agent": OpAgent,
	}
	for name, want := range tests {
		got, ok := ParseOperation(name)
		if !ok || got != want {
			t.Fatalf("ParseOperation(%q) = %q, %v", name, got, ok)
		}
	}
	if _, ok := ParseOperation("nx"); ok {
		t.Fatalf("expected unknown operation")
	}
	if _, ok := AliasOperation("install"); ok {
		t.Fatalf("canonical names are not aliases")
	}
}
