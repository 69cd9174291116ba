// internal/store/store.go
// Package store keeps an index of parsed runs in a SQLite database so that
// sweeps can be queried without re-parsing every log.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/strin/HeteroSampler/internal/logging"
	"github.com/strin/HeteroSampler/internal/metrics"
	"github.com/strin/HeteroSampler/internal/record"
)

//go:embed schema.sql
var schemaDDL string

// Entry is one indexed run.
type Entry struct {
	ID             int64
	BatchID        string
	Name           string
	Path           string
	Accuracy       *float64
	TokenAccuracy  float64
	MeanTimeRaw    *float64
	MeanTimeLength *float64
	Examples       int
	Tokens         int
	Warnings       int
	Corpus         string
	ParsedAt       time.Time
	Parameters     map[string]float64
}

// Store is a run index backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the index at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: empty database path")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	// One connection: the foreign_keys pragma is per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put indexes one run under batchID and returns its row id.
func (s *Store) Put(ctx context.Context, batchID uuid.UUID, path string, run *record.RunRecord, summary metrics.Summary) (int64, error) {
	if run == nil {
		return 0, errors.New("store: nil run")
	}
	raw := optionalMeanTime(run, metrics.WeightRaw)
	length := optionalMeanTime(run, metrics.WeightLength)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin put: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO runs
		(batch_id, name, path, accuracy, token_accuracy, mean_time_raw, mean_time_length,
		 examples, tokens, warnings, corpus, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batchID.String(), summary.Name, path, nullFloat(summary.Accuracy), summary.TokenAccuracy,
		nullFloat(raw), nullFloat(length), summary.Examples, summary.Tokens,
		summary.Warnings, run.CorpusReference, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert run %s: %w", summary.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	for feature, weight := range run.Parameters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO parameters (run_id, feature, weight) VALUES (?, ?, ?)`,
			id, feature, weight); err != nil {
			return 0, fmt.Errorf("insert parameter %s: %w", feature, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit put: %w", err)
	}
	logging.LogRun("store", summary.Name, "indexed", map[string]any{"id": id, "batch": batchID.String()})
	return id, nil
}

// List returns every indexed run, oldest first, with its parameters.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, batch_id, name, path, accuracy, token_accuracy,
		mean_time_raw, mean_time_length, examples, tokens, warnings, corpus, parsed_at
		FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	var entries []Entry
	for rows.Next() {
		var (
			e                Entry
			acc, raw, length sql.NullFloat64
			parsedAt         string
		)
		if err := rows.Scan(&e.ID, &e.BatchID, &e.Name, &e.Path, &acc, &e.TokenAccuracy,
			&raw, &length, &e.Examples, &e.Tokens, &e.Warnings, &e.Corpus, &parsedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.Accuracy = floatPtr(acc)
		e.MeanTimeRaw = floatPtr(raw)
		e.MeanTimeLength = floatPtr(length)
		if t, err := time.Parse(time.RFC3339Nano, parsedAt); err == nil {
			e.ParsedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for i := range entries {
		params, err := s.parameters(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Parameters = params
	}
	return entries, nil
}

func (s *Store) parameters(ctx context.Context, runID int64) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT feature, weight FROM parameters WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query parameters: %w", err)
	}
	defer rows.Close()
	var out map[string]float64
	for rows.Next() {
		var feature string
		var weight float64
		if err := rows.Scan(&feature, &weight); err != nil {
			return nil, fmt.Errorf("scan parameter: %w", err)
		}
		if out == nil {
			out = make(map[string]float64)
		}
		out[feature] = weight
	}
	return out, rows.Err()
}

func optionalMeanTime(run *record.RunRecord, w metrics.TimeWeighting) *float64 {
	v, err := metrics.MeanTime(run, w)
	if err != nil {
		return nil
	}
	return &v
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
