// Package history stores executed reqline reports in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
	"github.com/abdul-hamid-achik/reqline/packages/core/runner"
)

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id          TEXT PRIMARY KEY,
	method      TEXT NOT NULL,
	full_url    TEXT NOT NULL,
	http_status INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	started_at  INTEGER NOT NULL,
	report      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_executions_started_at ON executions (started_at);
`

// DefaultListLimit is used when List is called with a non-positive limit
const DefaultListLimit = 20

// ErrNotFound is returned by Get for unknown ids
var ErrNotFound = errors.New("history entry not found")

// Entry is one stored execution
type Entry struct {
	ID         string          `json:"id"`
	Method     string          `json:"method"`
	FullURL    string          `json:"full_url"`
	HTTPStatus int             `json:"http_status"`
	DurationMs int64           `json:"duration_ms"`
	StartedAt  time.Time       `json:"started_at"`
	Report     json.RawMessage `json:"report"`
}

// Store implements runner.Recorder
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

var _ runner.Recorder = (*Store)(nil)

// Open opens (creating if needed) the history database at path.
// Both plain paths and sqlite:// / sqlite: prefixed paths are accepted.
func Open(path string) (*Store, error) {
	dsn := parseConnectionString(path)
	if dsn == "" {
		return nil, fmt.Errorf("history path is empty")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialise history schema: %w", err)
	}

	return &Store{
		db:           db,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores report under a freshly generated id
func (s *Store) Record(ctx context.Context, d *parser.Descriptor, report *runner.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO executions (id, method, full_url, http_status, duration_ms, started_at, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		string(d.Method),
		report.Request.FullURL,
		report.Response.HTTPStatus,
		report.Response.Duration,
		report.Response.RequestStartTimestamp,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first
func (s *Store) List(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, method, full_url, http_status, duration_ms, started_at, report
		 FROM executions ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Get returns the entry with id
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, method, full_url, http_status, duration_ms, started_at, report
		 FROM executions WHERE id = ?`, id)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return entry, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		entry     Entry
		startedAt int64
		report    string
	)
	err := row.Scan(&entry.ID, &entry.Method, &entry.FullURL, &entry.HTTPStatus, &entry.DurationMs, &startedAt, &report)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	entry.StartedAt = time.UnixMilli(startedAt)
	entry.Report = json.RawMessage(report)
	return &entry, nil
}

// parseConnectionString strips the optional sqlite scheme
func parseConnectionString(connStr string) string {
	connStr = strings.TrimSpace(connStr)

	if strings.HasPrefix(connStr, "sqlite://") {
		return strings.TrimPrefix(connStr, "sqlite://")
	}
	if strings.HasPrefix(connStr, "sqlite:") {
		return strings.TrimPrefix(connStr, "sqlite:")
	}
	return connStr
}
