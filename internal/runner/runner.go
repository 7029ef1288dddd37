package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"goni/internal/core"
)

// Runner запускает оттранслированную команду без участия shell.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New возвращает Runner, привязанный к stdio процесса.
func New() *Runner {
	return &Runner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// ExitError сообщает о ненулевом коде завершения дочернего процесса.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

// Run выполняет cmd в каталоге dir и ждет завершения.
func (r *Runner) Run(ctx context.Context, cmd core.ResolvedCommand, dir string) error {
	if cmd.Command == "" {
		return errors.New("empty command")
	}
	c := exec.CommandContext(ctx, cmd.Command, cmd.Args...)
	c.Dir = dir
	c.Stdin = r.Stdin
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			return &ExitError{Command: cmd.Command, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("run %s: %w", cmd.Command, err)
	}
	return nil
}
