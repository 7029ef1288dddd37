package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"goni/internal/storage"
)

// Store реализует storage.Store поверх SQLite.
type Store struct {
	db *sql.DB
}

// Open создает каталог базы, открывает соединение и выполняет миграции.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_journal=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uid TEXT NOT NULL,
			ts DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			cwd TEXT NOT NULL,
			agent TEXT NOT NULL,
			operation TEXT NOT NULL,
			input BLOB NOT NULL,
			command TEXT NOT NULL,
			args BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_ts ON history(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_history_cwd_op_ts ON history(cwd, operation, ts);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveCommand сохраняет запись истории; пустые ID и TS заполняются.
func (s *Store) SaveCommand(ctx context.Context, rec storage.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	ts := rec.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	input, err := marshalArgs(rec.Input)
	if err != nil {
		return err
	}
	args, err := marshalArgs(rec.Args)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO history(uid, ts, cwd, agent, operation, input, command, args) VALUES(?,?,?,?,?,?,?,?)`,
		rec.ID, ts.UTC(), rec.Cwd, rec.Agent, rec.Operation, input, rec.Command, args)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// LatestCommand возвращает последнюю запись для каталога и операции.
func (s *Store) LatestCommand(ctx context.Context, cwd, operation string) (storage.HistoryRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT uid, ts, cwd, agent, operation, input, command, args
FROM history
WHERE cwd = ? AND operation = ?
ORDER BY ts DESC, id DESC
LIMIT 1`, cwd, operation)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.HistoryRecord{}, fmt.Errorf("%s %s: %w", cwd, operation, storage.ErrNotFound)
		}
		return storage.HistoryRecord{}, fmt.Errorf("query latest command: %w", err)
	}
	return rec, nil
}

// QueryHistory возвращает историю по фильтрам, новые записи первыми.
func (s *Store) QueryHistory(ctx context.Context, q storage.HistoryQuery) ([]storage.HistoryRecord, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	from := q.From
	if from.IsZero() {
		from = time.Unix(0, 0).UTC()
	}
	to := q.To
	if to.IsZero() {
		to = time.Now().UTC()
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT uid, ts, cwd, agent, operation, input, command, args
FROM history
WHERE ts >= ? AND ts <= ? AND (? = '' OR cwd = ?) AND (? = '' OR operation = ?)
ORDER BY ts DESC, id DESC
LIMIT ?`, from.UTC(), to.UTC(), q.Cwd, q.Cwd, q.Operation, q.Operation, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := make([]storage.HistoryRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

// Prune удаляет записи старше before и возвращает их количество.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE ts < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return n, nil
}

// Close закрывает соединение.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (storage.HistoryRecord, error) {
	var rec storage.HistoryRecord
	var ts string
	var input, args []byte
	if err := row.Scan(&rec.ID, &ts, &rec.Cwd, &rec.Agent, &rec.Operation, &input, &rec.Command, &args); err != nil {
		return storage.HistoryRecord{}, err
	}
	parsedTS, err := parseSQLiteTS(ts)
	if err != nil {
		return storage.HistoryRecord{}, fmt.Errorf("parse history timestamp: %w", err)
	}
	rec.TS = parsedTS
	if err := json.Unmarshal(input, &rec.Input); err != nil {
		return storage.HistoryRecord{}, fmt.Errorf("decode input: %w", err)
	}
	if err := json.Unmarshal(args, &rec.Args); err != nil {
		return storage.HistoryRecord{}, fmt.Errorf("decode args: %w", err)
	}
	return rec, nil
}

func parseSQLiteTS(v string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported sqlite time format: %q", v)
}

func marshalArgs(args []string) ([]byte, error) {
	if args == nil {
		args = []string{}
	}
	buf, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal args: %w", err)
	}
	return buf, nil
}
