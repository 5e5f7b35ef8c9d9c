// Package store handles SQLite persistence of attempt history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/timeit/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for attempt data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			run_key TEXT NOT NULL,
			run_name TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			completed INTEGER NOT NULL,
			total_ms INTEGER NOT NULL,
			saved_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_splits (
			attempt_id INTEGER NOT NULL,
			segment_index INTEGER NOT NULL,
			segment_id TEXT NOT NULL,
			name TEXT NOT NULL,
			duration_ms INTEGER,
			ended_at_ms INTEGER,
			skipped INTEGER NOT NULL,
			PRIMARY KEY (attempt_id, segment_index)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_run_key_ended_at ON attempts(run_key, ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAttempt stores an attempt and its per-segment results.
func (s *Store) InsertAttempt(ctx context.Context, attempt model.Attempt, splits []model.AttemptSplit) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			// The insert error is what the caller needs; a rollback failure adds nothing.
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (run_key, run_name, started_at, ended_at, completed, total_ms, saved_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		attempt.RunKey,
		attempt.RunName,
		attempt.StartedAt.UTC().Format(timeLayout),
		attempt.EndedAt.UTC().Format(timeLayout),
		attempt.Completed,
		attempt.Total.Milliseconds(),
		attempt.TimeSaved.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert attempt: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read attempt id: %w", err)
	}

	if len(splits) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO attempt_splits (attempt_id, segment_index, segment_id, name, duration_ms, ended_at_ms, skipped)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("failed to prepare split insert: %w", err)
		}
		defer closeQuietly(stmt)
		for _, sp := range splits {
			if _, err := stmt.ExecContext(ctx, id, sp.SegmentIndex, sp.SegmentID, sp.Name, sp.Duration, sp.EndedAt, sp.Skipped); err != nil {
				return 0, fmt.Errorf("failed to insert split: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit attempt: %w", err)
	}
	return id, nil
}

// ListAttempts returns attempts filtered by history config, oldest first.
func (s *Store) ListAttempts(ctx context.Context, cfg model.HistoryConfig) ([]model.AttemptAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.RunKey != "" {
		clauses = append(clauses, "run_key = ?")
		args = append(args, cfg.RunKey)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, run_key, ended_at, completed, total_ms, saved_ms
		FROM attempts
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer closeQuietly(rows)

	var attempts []model.AttemptAggregate
	for rows.Next() {
		var agg model.AttemptAggregate
		var endedAt string
		var totalMs, savedMs int64
		if err := rows.Scan(&agg.AttemptID, &agg.RunKey, &endedAt, &agg.Completed, &totalMs, &savedMs); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ended_at: %w", err)
		}
		agg.EndedAt = parsed
		agg.Total = time.Duration(totalMs) * time.Millisecond
		agg.TimeSaved = time.Duration(savedMs) * time.Millisecond
		attempts = append(attempts, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attempts: %w", err)
	}
	return attempts, nil
}

// ListSplitsForAttempts returns the recorded splits keyed by attempt, each
// in segment order.
func (s *Store) ListSplitsForAttempts(ctx context.Context, attemptIDs []int64) (map[int64][]model.AttemptSplit, error) {
	result := map[int64][]model.AttemptSplit{}
	if len(attemptIDs) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(attemptIDs))
	args := make([]any, len(attemptIDs))
	for i, id := range attemptIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT attempt_id, segment_index, segment_id, name, duration_ms, ended_at_ms, skipped
		FROM attempt_splits
		WHERE attempt_id IN (%s)
		ORDER BY attempt_id, segment_index`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var attemptID int64
		var sp model.AttemptSplit
		if err := rows.Scan(&attemptID, &sp.SegmentIndex, &sp.SegmentID, &sp.Name, &sp.Duration, &sp.EndedAt, &sp.Skipped); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		result[attemptID] = append(result[attemptID], sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read splits: %w", err)
	}
	return result, nil
}

// ListRuns summarizes recorded attempts per run, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]model.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_key, MAX(run_name), COUNT(*), SUM(completed), MAX(ended_at)
		FROM attempts
		GROUP BY run_key
		ORDER BY MAX(ended_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer closeQuietly(rows)

	var runs []model.RunSummary
	for rows.Next() {
		var sum model.RunSummary
		var lastEnded string
		if err := rows.Scan(&sum.RunKey, &sum.RunName, &sum.Attempts, &sum.Completed, &lastEnded); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		parsed, err := time.Parse(timeLayout, lastEnded)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ended_at: %w", err)
		}
		sum.LastEnded = parsed
		runs = append(runs, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// closeQuietly closes c where the caller already has its result or error
// and a close failure cannot change it.
func closeQuietly(c io.Closer) {
	_ = c.Close()
}
