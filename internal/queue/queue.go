// Package queue persists pending analysis requests in SQLite so they can be
// fanned out to workers. The database holds in-flight work, not an archive;
// completed items are pruned by Prune.
package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the lifecycle state of one queued request.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Item is one queued analysis request.
type Item struct {
	ID        int64
	VideoID   string
	Status    Status
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrEmpty is returned by ClaimNext when no pending item exists.
var ErrEmpty = errors.New("queue is empty")

const schema = `
CREATE TABLE IF NOT EXISTS analysis_queue (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'pending',
	attempts INTEGER NOT NULL DEFAULT 0,
	last_error TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_queue_status ON analysis_queue(status, id);
`

// Store manages queue persistence backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open initializes or connects to the queue database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply queue schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Enqueue adds a video to the queue. Re-enqueueing a known video resets it
// to pending so it can be retried.
func (s *Store) Enqueue(ctx context.Context, videoID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_queue (video_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			status = excluded.status,
			last_error = '',
			updated_at = excluded.updated_at`,
		videoID, StatusPending, now, now)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", videoID, err)
	}
	return nil
}

// ClaimNext atomically moves the oldest pending item to running and returns
// it. ErrEmpty means there is nothing to do.
func (s *Store) ClaimNext(ctx context.Context) (*Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT id, video_id, attempts, created_at
		FROM analysis_queue
		WHERE status = ?
		ORDER BY id
		LIMIT 1`, StatusPending)

	var item Item
	var createdAt string
	if err := row.Scan(&item.ID, &item.VideoID, &item.Attempts, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("scan pending item: %w", err)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE analysis_queue
		SET status = ?, attempts = attempts + 1, updated_at = ?
		WHERE id = ?`,
		StatusRunning, now.Format(time.RFC3339Nano), item.ID); err != nil {
		return nil, fmt.Errorf("mark item running: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	item.Status = StatusRunning
	item.Attempts++
	item.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	item.UpdatedAt = now
	return &item, nil
}

// MarkDone records a successful analysis.
func (s *Store) MarkDone(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, StatusDone, "")
}

// MarkFailed records a failed analysis along with its error text.
func (s *Store) MarkFailed(ctx context.Context, id int64, cause string) error {
	return s.setStatus(ctx, id, StatusFailed, cause)
}

func (s *Store) setStatus(ctx context.Context, id int64, status Status, cause string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE analysis_queue
		SET status = ?, last_error = ?, updated_at = ?
		WHERE id = ?`,
		status, cause, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("set item %d to %s: %w", id, status, err)
	}
	return nil
}

// Stats counts items per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM analysis_queue GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := map[Status]int{}
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Prune removes finished items older than the cutoff.
func (s *Store) Prune(ctx context.Context, before time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM analysis_queue
		WHERE status IN (?, ?) AND updated_at < ?`,
		StatusDone, StatusFailed, before.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("prune queue: %w", err)
	}
	return nil
}
