package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"goni/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSaveAndLatest(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, st.SaveCommand(ctx, storage.HistoryRecord{
		Cwd: "/p", Agent: "npm", Operation: "run",
		Input: []string{"dev"}, Command: "npm", Args: []string{"run", "dev"}, TS: base,
	}))
	require.NoError(t, st.SaveCommand(ctx, storage.HistoryRecord{
		Cwd: "/p", Agent: "npm", Operation: "run",
		Input: []string{"build", "--watch"}, Command: "npm", Args: []string{"run", "build", "--", "--watch"}, TS: base.Add(time.Minute),
	}))
	require.NoError(t, st.SaveCommand(ctx, storage.HistoryRecord{
		Cwd: "/p", Agent: "npm", Operation: "install",
		Command: "npm", Args: []string{"i"}, TS: base.Add(2 * time.Minute),
	}))

	rec, err := st.LatestCommand(ctx, "/p", "run")
	require.NoError(t, err)
	require.Equal(t, []string{"build", "--watch"}, rec.Input)
	require.Equal(t, []string{"run", "build", "--", "--watch"}, rec.Args)
	require.NotEmpty(t, rec.ID)
	require.True(t, rec.TS.Equal(base.Add(time.Minute)), "ts=%s", rec.TS)

	inst, err := st.LatestCommand(ctx, "/p", "install")
	require.NoError(t, err)
	require.Equal(t, []string{}, inst.Input)
}

func TestLatestNotFound(t *testing.T) {
	st := openTestStore(t)
	_, err := st.LatestCommand(context.Background(), "/none", "run")
	require.Error(t, err)
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestQueryHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		cwd := "/a"
		if i%2 == 1 {
			cwd = "/b"
		}
		require.NoError(t, st.SaveCommand(ctx, storage.HistoryRecord{
			Cwd: cwd, Agent: "pnpm", Operation: "run",
			Input: []string{"dev"}, Command: "pnpm", Args: []string{"run", "dev"},
			TS: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := st.QueryHistory(ctx, storage.HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	require.True(t, all[0].TS.After(all[4].TS))

	onlyA, err := st.QueryHistory(ctx, storage.HistoryQuery{Cwd: "/a"})
	require.NoError(t, err)
	require.Len(t, onlyA, 3)

	limited, err := st.QueryHistory(ctx, storage.HistoryQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)

	none, err := st.QueryHistory(ctx, storage.HistoryQuery{Operation: "install"})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestPrune(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, st.SaveCommand(ctx, storage.HistoryRecord{Cwd: "/p", Agent: "npm", Operation: "run", Command: "npm", TS: now.Add(-48 * time.Hour)}))
	require.NoError(t, st.SaveCommand(ctx, storage.HistoryRecord{Cwd: "/p", Agent: "npm", Operation: "run", Command: "npm", TS: now.Add(-time.Minute)}))

	n, err := st.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	left, err := st.QueryHistory(ctx, storage.HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, left, 1)
}

func TestParseSQLiteTS(t *testing.T) {
	for _, v := range []string{
		"2026-03-01T10:00:00Z",
		"2026-03-01 10:00:00.5+00:00",
		"2026-03-01 10:00:00",
	} {
		_, err := parseSQLiteTS(v)
		require.NoError(t, err, v)
	}
	_, err := parseSQLiteTS("yesterday")
	require.Error(t, err)
}
