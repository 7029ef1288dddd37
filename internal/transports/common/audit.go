package common

import (
	"context"

	"goni/internal/storage"
)

// HistoryLog записывает и читает историю оттранслированных команд.
type HistoryLog interface {
	SaveCommand(ctx context.Context, rec storage.HistoryRecord) error
	LatestCommand(ctx context.Context, cwd, operation string) (storage.HistoryRecord, error)
}

func historyRecord(res Result, input []string) storage.HistoryRecord {
	return storage.HistoryRecord{
		Cwd:       res.Context.Cwd,
		Agent:     string(res.Agent),
		Operation: string(res.Operation),
		Input:     append([]string(nil), input...),
		Command:   res.Command.Command,
		Args:      append([]string(nil), res.Command.Args...),
	}
}
