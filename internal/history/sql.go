package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

type dialect struct {
	driver string
	schema string
	dollar bool // $n placeholders instead of ?
}

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: `
CREATE TABLE IF NOT EXISTS uploads (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	source     TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT '',
	size       INTEGER NOT NULL DEFAULT 0,
	chunks     INTEGER NOT NULL DEFAULT 0,
	summary    TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS queries (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	provider   TEXT NOT NULL DEFAULT '',
	sources    TEXT NOT NULL DEFAULT '[]',
	fallback   BOOLEAN NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);`,
}

var postgresDialect = dialect{
	driver: "postgres",
	dollar: true,
	schema: `
CREATE TABLE IF NOT EXISTS uploads (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	source     TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT '',
	size       BIGINT NOT NULL DEFAULT 0,
	chunks     INTEGER NOT NULL DEFAULT 0,
	summary    TEXT NOT NULL DEFAULT '',
	created_at BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS queries (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	provider   TEXT NOT NULL DEFAULT '',
	sources    TEXT NOT NULL DEFAULT '[]',
	fallback   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at BIGINT NOT NULL
);`,
}

// rebind rewrites ? placeholders for drivers that number them.
func (d dialect) rebind(query string) string {
	if !d.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore is a Store on top of database/sql, shared by SQLite and PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (or creates) a history database file at path.
func OpenSQLite(path string) (*SQLStore, error) {
	if path == "" {
		return nil, errors.New("sqlite history: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return newSQLStore(db, sqliteDialect)
}

// OpenPostgres connects to databaseURL and ensures the schema exists.
func OpenPostgres(databaseURL string) (*SQLStore, error) {
	if databaseURL == "" {
		return nil, errors.New("postgres history: empty dsn")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return newSQLStore(db, postgresDialect)
}

func newSQLStore(db *sql.DB, d dialect) (*SQLStore, error) {
	for _, stmt := range strings.Split(d.schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create history schema: %w", err)
		}
	}
	return &SQLStore{db: db, dialect: d}, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) RecordUpload(ctx context.Context, rec UploadRecord) (UploadRecord, error) {
	rec = stampUpload(rec, time.Now().UTC())
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(
		`INSERT INTO uploads (id, source, type, size, chunks, summary, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.Source, rec.Type, rec.Size, rec.Chunks, rec.Summary, rec.CreatedAt.UnixNano())
	if err != nil {
		return UploadRecord{}, fmt.Errorf("record upload: %w", err)
	}
	return rec, nil
}

func (s *SQLStore) RecordQuery(ctx context.Context, rec QueryRecord) (QueryRecord, error) {
	rec = stampQuery(rec, time.Now().UTC())
	sources, err := json.Marshal(rec.Sources)
	if err != nil {
		return QueryRecord{}, fmt.Errorf("encode sources: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.dialect.rebind(
		`INSERT INTO queries (id, question, answer, provider, sources, fallback, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.Question, rec.Answer, rec.Provider, string(sources), rec.Fallback, rec.CreatedAt.UnixNano())
	if err != nil {
		return QueryRecord{}, fmt.Errorf("record query: %w", err)
	}
	return rec, nil
}

func (s *SQLStore) RecentUploads(ctx context.Context, limit int) ([]UploadRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT id, source, type, size, chunks, summary, created_at FROM uploads ORDER BY seq DESC LIMIT ?`),
		normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	out := []UploadRecord{}
	for rows.Next() {
		var rec UploadRecord
		var created int64
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Type, &rec.Size, &rec.Chunks, &rec.Summary, &created); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		rec.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) RecentQueries(ctx context.Context, limit int) ([]QueryRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT id, question, answer, provider, sources, fallback, created_at FROM queries ORDER BY seq DESC LIMIT ?`),
		normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	out := []QueryRecord{}
	for rows.Next() {
		var rec QueryRecord
		var sources string
		var created int64
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.Answer, &rec.Provider, &sources, &rec.Fallback, &created); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &rec.Sources); err != nil {
			rec.Sources = []string{}
		}
		rec.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
