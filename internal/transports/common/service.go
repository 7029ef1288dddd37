package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"goni/internal/agents"
	"goni/internal/core"
	"goni/internal/detect"
	"goni/internal/storage"
)

// RerunLast как единственный аргумент run повторяет последний запуск в каталоге.
const RerunLast = "-"

var (
	errEmptyCommand   = errors.New("empty command")
	errUnknownCommand = errors.New("unknown command")

	// ErrNoAgent возвращается, если агент не задан, не найден и нет значения по умолчанию.
	ErrNoAgent = errors.New("no package manager agent")
	// ErrNoPreviousRun возвращается для "nr -" без истории.
	ErrNoPreviousRun = errors.New("no previous run in this directory")
)

// DetectFunc определяет агента для каталога.
type DetectFunc func(dir string) (detect.Result, error)

// Service объединяет пайплайн detect -> translate -> history.
type Service struct {
	Registry     *core.Registry
	Detect       DetectFunc
	History      HistoryLog
	DefaultAgent agents.Agent
	GlobalAgent  agents.Agent
	Logger       *slog.Logger
}

// Request описывает один вызов операции.
type Request struct {
	Operation    core.Operation
	Args         []string
	Cwd          string
	Agent        agents.Agent
	Programmatic bool
	// NoHistory отключает запись в историю (печать без запуска).
	NoHistory bool
}

// Result содержит оттранслированную команду и контекст, в котором она получена.
type Result struct {
	Operation core.Operation
	Agent     agents.Agent
	Command   core.ResolvedCommand
	Context   core.RunnerContext
	Detected  *detect.Result
}

// Resolve выбирает агента, транслирует аргументы и пишет историю.
func (s *Service) Resolve(ctx context.Context, req Request) (Result, error) {
	rctx := core.RunnerContext{Programmatic: req.Programmatic, Cwd: req.Cwd}
	res := Result{Operation: req.Operation}

	detected, err := s.detect(req.Cwd)
	if err != nil {
		if req.Agent == "" {
			return res, err
		}
		s.logger().Warn("detect failed, using explicit agent", "agent", req.Agent, "err", err)
		detected = nil
	}
	res.Detected = detected
	rctx = rctx.WithLock(detected != nil && detected.HasLock())

	agent, err := s.chooseAgent(req, detected)
	if err != nil {
		return res, err
	}
	res.Agent = agent
	res.Context = rctx

	args := req.Args
	if req.Operation == core.OpRun && len(args) == 1 && args[0] == RerunLast {
		args, err = s.lastRunArgs(ctx, req.Cwd)
		if err != nil {
			return res, err
		}
	}

	cmd, err := s.Registry.Execute(req.Operation, agent, args, rctx)
	if err != nil {
		return res, err
	}
	res.Command = cmd
	s.logger().Debug("command resolved", "operation", req.Operation, "agent", agent, "command", cmd.String())

	if s.History != nil && !req.NoHistory {
		if err := s.History.SaveCommand(ctx, historyRecord(res, args)); err != nil {
			s.logger().Warn("history write failed", "err", err)
		}
	}
	return res, nil
}

func (s *Service) detect(cwd string) (*detect.Result, error) {
	if s.Detect == nil {
		return nil, nil
	}
	found, err := s.Detect(cwd)
	if err != nil {
		if errors.Is(err, detect.ErrNotDetected) {
			return nil, nil
		}
		return nil, fmt.Errorf("detect agent: %w", err)
	}
	return &found, nil
}

func (s *Service) chooseAgent(req Request, detected *detect.Result) (agents.Agent, error) {
	switch {
	case req.Agent != "":
		return req.Agent, nil
	case core.IsGlobal(req.Operation, req.Args) && s.GlobalAgent != "":
		return s.GlobalAgent, nil
	case detected != nil:
		return detected.Agent, nil
	case s.DefaultAgent != "":
		return s.DefaultAgent, nil
	default:
		return "", fmt.Errorf("%s: %w", req.Cwd, ErrNoAgent)
	}
}

func (s *Service) lastRunArgs(ctx context.Context, cwd string) ([]string, error) {
	if s.History == nil {
		return nil, ErrNoPreviousRun
	}
	rec, err := s.History.LatestCommand(ctx, cwd, string(core.OpRun))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", cwd, ErrNoPreviousRun)
		}
		return nil, err
	}
	return rec.Input, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// ParseTextCommand переводит строку вида "nr dev --port 3000" в (operation, args).
// Разбиение на слова и раскрытие переменных выполняются по правилам shell.
func ParseTextCommand(text string) (core.Operation, []string, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", nil, errEmptyCommand
	}
	words, err := shell.Fields(t, nil)
	if err != nil {
		return "", nil, fmt.Errorf("parse %q: %w", t, err)
	}
	if len(words) == 0 {
		return "", nil, errEmptyCommand
	}
	op, ok := core.ParseOperation(words[0])
	if !ok {
		return "", nil, fmt.Errorf("%s: %w", words[0], errUnknownCommand)
	}
	args := []string{}
	if len(words) > 1 {
		args = words[1:]
	}
	return op, args, nil
}
