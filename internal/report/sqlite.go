package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/teamcutter/fetchr/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
    batch                  TEXT NOT NULL,
    position               INTEGER NOT NULL,
    status_code            INTEGER,
    file_size              INTEGER,
    downloaded_bytes       INTEGER NOT NULL DEFAULT 0,
    url                    TEXT NOT NULL,
    destination            TEXT NOT NULL,
    success                INTEGER NOT NULL DEFAULT 0,
    cached                 INTEGER NOT NULL DEFAULT 0,
    error_message          TEXT NOT NULL DEFAULT '',
    extraction_file_size   INTEGER,
    extraction_destination TEXT,
    extraction_cached      INTEGER,
    extraction_success     INTEGER,
    recorded_at            TEXT NOT NULL,
    PRIMARY KEY (batch, position)
);
`

// SQLiteStore appends reports to a SQLite database. It is an export target
// only; cache decisions never consult it.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append stores every row of r under r.Batch in a single transaction.
func (s *SQLiteStore) Append(ctx context.Context, r *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, o := range r.Rows {
		if err := insertRow(ctx, tx, r.Batch, i, flatten(o), now); err != nil {
			return fmt.Errorf("failed to insert %s: %w", o.URL, err)
		}
	}

	return tx.Commit()
}

func insertRow(ctx context.Context, tx *sql.Tx, batch string, position int, r row, recordedAt string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO downloads
		(batch, position, status_code, file_size, downloaded_bytes, url, destination,
		 success, cached, error_message, extraction_file_size, extraction_destination,
		 extraction_cached, extraction_success, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch, position, r.StatusCode, r.FileSize, r.DownloadedBytes, r.URL, r.Destination,
		r.Success, r.Cached, r.ErrorMessage, r.ExtractionFileSize, r.ExtractionDestination,
		r.ExtractionCached, r.ExtractionSuccess, recordedAt)
	return err
}

// Load returns the rows recorded for batch in their original order.
func (s *SQLiteStore) Load(ctx context.Context, batch string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT status_code, file_size, downloaded_bytes, url, destination, success, cached,
		       error_message, extraction_file_size, extraction_destination,
		       extraction_cached, extraction_success
		FROM downloads WHERE batch = ? ORDER BY position`, batch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []domain.Outcome
	for rows.Next() {
		var (
			o                     domain.Outcome
			statusCode, fileSize  sql.NullInt64
			extSize               sql.NullInt64
			extDest               sql.NullString
			extCached, extSuccess sql.NullBool
		)
		if err := rows.Scan(&statusCode, &fileSize, &o.DownloadedBytes, &o.URL, &o.Destination,
			&o.Success, &o.Cached, &o.ErrorMessage, &extSize, &extDest, &extCached, &extSuccess); err != nil {
			return nil, err
		}

		if statusCode.Valid {
			code := int(statusCode.Int64)
			o.StatusCode = &code
		}
		if fileSize.Valid {
			o.FileSize = &fileSize.Int64
		}
		if extDest.Valid {
			o.Extraction = &domain.ExtractionOutcome{
				FileSize:    extSize.Int64,
				Destination: extDest.String,
				Cached:      extCached.Bool,
				Success:     extSuccess.Bool,
			}
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return New(batch, outcomes), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
