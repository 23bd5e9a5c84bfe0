package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hirepulse/tadash/internal/cache"
	"github.com/hirepulse/tadash/internal/db"
)

// timeLayout has fixed width so stored timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Store persists load runs.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts a run. If run.ID is empty a UUID is generated. The stored
// run is returned.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	sources, err := json.Marshal(run.Sources)
	if err != nil {
		return run, fmt.Errorf("marshalling sources: %w", err)
	}
	counts, err := json.Marshal(run.Counts)
	if err != nil {
		return run, fmt.Errorf("marshalling counts: %w", err)
	}

	var errText sql.NullString
	if run.Error != "" {
		errText = sql.NullString{String: run.Error, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO load_runs (
			id, started_at, duration_ms, sources, rows, counts, checksum, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.Duration.Milliseconds(),
		string(sources),
		run.Rows,
		string(counts),
		run.Checksum,
		errText,
	)
	if err != nil {
		return run, fmt.Errorf("inserting load run: %w", err)
	}
	return run, nil
}

// Hook returns a cache.OnLoad callback that records every load.
func (s *Store) Hook() func(cache.LoadEvent) {
	return func(ev cache.LoadEvent) {
		if _, err := s.Record(context.Background(), FromEvent(ev)); err != nil {
			log.Printf("history: %v", err)
		}
	}
}

// Get retrieves a single run.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, duration_ms, sources, rows, counts, checksum, error
		FROM load_runs WHERE id = ?`, id)
	return scanInto(row)
}

// ListFilter controls which runs List returns.
type ListFilter struct {
	Since      *time.Time
	FailedOnly bool
	Limit      int
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Run, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Since != nil {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	if filter.FailedOnly {
		clauses = append(clauses, "error IS NOT NULL")
	}

	query := "SELECT id, started_at, duration_ms, sources, rows, counts, checksum, error FROM load_runs"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying load runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// DeleteBefore removes runs started before the given time and returns the
// number removed.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM load_runs WHERE started_at < ?",
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old load runs: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Run, error) {
	var (
		r                     Run
		started               string
		durationMS            int64
		sourcesJSON, countsJS string
		errText               sql.NullString
	)
	if err := sc.Scan(&r.ID, &started, &durationMS, &sourcesJSON, &r.Rows, &countsJS, &r.Checksum, &errText); err != nil {
		return nil, err
	}

	if t, err := time.Parse(timeLayout, started); err == nil {
		r.StartedAt = t
	} else if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
		r.StartedAt = t
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	if errText.Valid {
		r.Error = errText.String
	}
	if err := json.Unmarshal([]byte(sourcesJSON), &r.Sources); err != nil {
		r.Sources = nil
	}
	if err := json.Unmarshal([]byte(countsJS), &r.Counts); err != nil {
		r.Counts = nil
	}
	return &r, nil
}
