package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"goni/internal/core"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestRunCapturesOutput(t *testing.T) {
	requireBinary(t, "sh")
	var out bytes.Buffer
	r := &Runner{Stdout: &out}
	dir := t.TempDir()
	err := r.Run(context.Background(), core.ResolvedCommand{Command: "sh", Args: []string{"-c", "pwd"}}, dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), dir[strings.LastIndex(dir, "/")+1:]) {
		t.Fatalf("expected to run in %s, got %q", dir, out.String())
	}
}

func TestRunExitCode(t *testing.T) {
	requireBinary(t, "sh")
	r := &Runner{}
	err := r.Run(context.Background(), core.ResolvedCommand{Command: "sh", Args: []string{"-c", "exit 3"}}, "")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 3 {
		t.Fatalf("exit code = %d", exitErr.Code)
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := &Runner{}
	err := r.Run(context.Background(), core.ResolvedCommand{Command: "goni-definitely-missing-binary"}, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Fatalf("missing binary must not look like an exit code: %v", err)
	}
}

func TestRunEmptyCommand(t *testing.T) {
	if err := (&Runner{}).Run(context.Background(), core.ResolvedCommand{}, ""); err == nil {
		t.Fatalf("expected error")
	}
}
