// Package ledger persists which source videos have been fully
// processed. Records are append-only rows keyed by video id; a crash
// after encode but before record simply re-runs the video, so no
// partial-record repair is ever needed.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"clipstamp/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed_videos (
	video_id        TEXT PRIMARY KEY,
	title           TEXT NOT NULL DEFAULT '',
	output_video_id TEXT NOT NULL DEFAULT '',
	processed_at    TIMESTAMP NOT NULL
);`

type Ledger struct {
	db *sql.DB
}

// Open creates or opens the ledger database at dbPath, creating parent
// directories as needed.
func Open(dbPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error { return l.db.Close() }

// Has reports whether the source video has already been processed.
func (l *Ledger) Has(ctx context.Context, sourceVideoID string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx,
		"SELECT 1 FROM processed_videos WHERE video_id = ?", sourceVideoID,
	).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, &types.LedgerError{Op: "has", ID: sourceVideoID, Cause: err}
	}
	return true, nil
}

// Record durably marks a source video as processed. The insert ignores
// an existing row for the same id, so calling Record twice is safe and
// never mutates the first record.
func (l *Ledger) Record(ctx context.Context, rec types.ProcessingRecord) error {
	processedAt := rec.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO processed_videos (video_id, title, output_video_id, processed_at)
		 VALUES (?, ?, ?, ?)`,
		rec.SourceVideoID, rec.Title, rec.OutputVideoID, processedAt.UTC(),
	)
	if err != nil {
		return &types.LedgerError{Op: "record", ID: rec.SourceVideoID, Cause: err}
	}
	return nil
}

// Records returns every processing record, oldest first. Used by the
// ledger inspection command.
func (l *Ledger) Records(ctx context.Context) ([]types.ProcessingRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT video_id, title, output_video_id, processed_at
		 FROM processed_videos ORDER BY processed_at, video_id`)
	if err != nil {
		return nil, &types.LedgerError{Op: "list", ID: "", Cause: err}
	}
	defer rows.Close()

	var out []types.ProcessingRecord
	for rows.Next() {
		var rec types.ProcessingRecord
		if err := rows.Scan(&rec.SourceVideoID, &rec.Title, &rec.OutputVideoID, &rec.ProcessedAt); err != nil {
			return nil, &types.LedgerError{Op: "list", ID: rec.SourceVideoID, Cause: err}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.LedgerError{Op: "list", ID: "", Cause: err}
	}
	return out, nil
}
