package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound возвращается, когда подходящей записи истории нет.
var ErrNotFound = errors.New("history record not found")

// HistoryRecord фиксирует одну оттранслированную команду.
type HistoryRecord struct {
	ID        string `json:"id"`
	Cwd       string `json:"cwd"`
	Agent     string `json:"agent"`
	Operation string `json:"operation"`
	// Input хранит исходные аргументы пользователя (для повтора через "nr -").
	Input   []string  `json:"input"`
	Command string    `json:"command"`
	Args    []string  `json:"args"`
	TS      time.Time `json:"ts"`
}

// HistoryQuery задает фильтры выборки истории.
type HistoryQuery struct {
	From      time.Time
	To        time.Time
	Cwd       string
	Operation string
	Limit     int
}

// Store описывает операции хранилища.
type Store interface {
	SaveCommand(ctx context.Context, rec HistoryRecord) error
	LatestCommand(ctx context.Context, cwd, operation string) (HistoryRecord, error)
	QueryHistory(ctx context.Context, q HistoryQuery) ([]HistoryRecord, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
	Close() error
}
