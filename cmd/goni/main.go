package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"goni/internal/app"
	"goni/internal/config"
	"goni/internal/core"
	"goni/internal/runner"
	"goni/internal/transports/cli"
	"goni/pkg/logger"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx, cfg, lg)
	if err != nil {
		lg.Error("init failed", "err", err)
		os.Exit(1)
	}

	root := cli.New(a, buildVersion())
	root.SetArgs(dispatchArgs(os.Args))
	err = root.ExecuteContext(ctx)
	_ = a.Close()
	if err != nil {
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "goni: %v\n", err)
		lg.Debug("command failed", "err", err)
		os.Exit(1)
	}
}

// dispatchArgs превращает вызов через симлинк (nr dev) в goni run dev.
func dispatchArgs(argv []string) []string {
	name := strings.TrimSuffix(filepath.Base(argv[0]), filepath.Ext(argv[0]))
	if op, ok := core.AliasOperation(name); ok {
		return append([]string{string(op)}, argv[1:]...)
	}
	return argv[1:]
}

func buildVersion() string {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}
	if date != "" {
		v += " " + date
	}
	return v
}
