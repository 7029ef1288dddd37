package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"goni/internal/agents"
	"goni/internal/config"
	"goni/internal/core"
	"goni/internal/detect"
	"goni/internal/runner"
	"goni/internal/storage"
	"goni/internal/storage/sqlite"
	"goni/internal/transports/common"
)

// App агрегирует зависимости goni.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Table    agents.Table
	Registry *core.Registry
	Store    storage.Store
	Service  *common.Service
	Runner   *runner.Runner
}

// NewApp строит приложение: таблицу шаблонов, реестр трансляторов и историю.
// Недоступная история не мешает работе: команда выполнится без записи.
func NewApp(ctx context.Context, cfg config.Config, lg *slog.Logger) (*App, error) {
	if lg == nil {
		lg = slog.Default()
	}
	table := agents.DefaultTable().Merge(cfg.Templates)
	r, err := core.NewDefaultRegistry(table)
	if err != nil {
		return nil, fmt.Errorf("register translators: %w", err)
	}

	a := &App{
		Config:   cfg,
		Logger:   lg,
		Table:    table,
		Registry: r,
		Runner:   runner.New(),
	}
	svc := &common.Service{
		Registry:     r,
		Detect:       detect.Detect,
		DefaultAgent: agents.Agent(cfg.Agent.Default),
		GlobalAgent:  agents.Agent(cfg.Agent.Global),
		Logger:       lg,
	}

	if cfg.History.Enabled && cfg.History.Path != "" {
		st, err := sqlite.Open(cfg.History.Path)
		if err != nil {
			lg.Warn("history disabled", "path", cfg.History.Path, "err", err)
		} else {
			a.Store = st
			svc.History = st
			a.pruneHistory(ctx)
		}
	}
	a.Service = svc
	return a, nil
}

func (a *App) pruneHistory(ctx context.Context) {
	days := a.Config.History.RetentionDays
	if days <= 0 || a.Store == nil {
		return
	}
	pruneCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	n, err := a.Store.Prune(pruneCtx, time.Now().UTC().AddDate(0, 0, -days))
	if err != nil {
		a.Logger.Warn("history prune failed", "err", err)
		return
	}
	if n > 0 {
		a.Logger.Debug("history pruned", "records", n)
	}
}

// Close высвобождает ресурсы приложения.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
