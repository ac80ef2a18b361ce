package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arthagpt/internal/config"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemory(0),
		"sqlite": sqlite,
	}
}

func TestRecordUploadAssignsIDAndTime(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec, err := s.RecordUpload(ctx, UploadRecord{Source: "axis.txt", Type: "text/plain", Size: 120, Chunks: 1, Summary: "Axis Bluechip."})
			require.NoError(t, err)
			assert.Len(t, rec.ID, 36)
			assert.False(t, rec.CreatedAt.IsZero())

			got, err := s.RecentUploads(ctx, 10)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, rec.ID, got[0].ID)
			assert.Equal(t, "axis.txt", got[0].Source)
			assert.Equal(t, int64(120), got[0].Size)
			assert.Equal(t, "Axis Bluechip.", got[0].Summary)
			assert.True(t, rec.CreatedAt.Equal(got[0].CreatedAt))
		})
	}
}

func TestRecentQueriesNewestFirstWithLimit(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			for i := 0; i < 4; i++ {
				_, err := s.RecordQuery(ctx, QueryRecord{
					Question:  fmt.Sprintf("q%d", i),
					Answer:    "a",
					Provider:  "groq",
					Sources:   []string{"axis.txt", "gold.txt"},
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				})
				require.NoError(t, err)
			}
			_, err := s.RecordQuery(ctx, QueryRecord{Question: "offline", Answer: "fallback", Fallback: true})
			require.NoError(t, err)

			got, err := s.RecentQueries(ctx, 3)
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, "offline", got[0].Question)
			assert.True(t, got[0].Fallback)
			assert.Equal(t, []string{}, got[0].Sources)
			assert.Equal(t, "q3", got[1].Question)
			assert.Equal(t, []string{"axis.txt", "gold.txt"}, got[1].Sources)
			assert.Equal(t, base.Add(3*time.Minute), got[1].CreatedAt)
			assert.Equal(t, "q2", got[2].Question)
		})
	}
}

func TestDefaultLimit(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < DefaultLimit+5; i++ {
				_, err := s.RecordUpload(ctx, UploadRecord{Source: fmt.Sprintf("doc-%d.txt", i)})
				require.NoError(t, err)
			}
			got, err := s.RecentUploads(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, got, DefaultLimit)
		})
	}
}

func TestMemoryCapacity(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()
	for _, src := range []string{"a", "b", "c"} {
		_, err := m.RecordUpload(ctx, UploadRecord{Source: src})
		require.NoError(t, err)
	}
	got, err := m.RecentUploads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Source)
	assert.Equal(t, "b", got[1].Source)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = s.RecordUpload(ctx, UploadRecord{Source: "gold.txt", Chunks: 3})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.RecentUploads(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Chunks)
}

func TestRebind(t *testing.T) {
	q := `INSERT INTO t (a, b) VALUES (?, ?) LIMIT ?`
	assert.Equal(t, q, sqliteDialect.rebind(q))
	assert.Equal(t, `INSERT INTO t (a, b) VALUES ($1, $2) LIMIT $3`, postgresDialect.rebind(q))
}

func TestOpen(t *testing.T) {
	s, err := Open(config.HistoryConfig{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(config.HistoryConfig{Type: "sqlite", DSN: filepath.Join(t.TempDir(), "h.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.HistoryConfig{Type: "mongo"})
	assert.Error(t, err)

	_, err = Open(config.HistoryConfig{Type: "postgres"})
	assert.Error(t, err)
}
