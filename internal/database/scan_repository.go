package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/echofort/threatintel/internal/models"
)

// PostgresScanRepository implements scanner.ScanRepository using PostgreSQL.
type PostgresScanRepository struct {
	db *sql.DB
}

// NewPostgresScanRepository creates a new PostgreSQL scan repository.
func NewPostgresScanRepository(db *sql.DB) *PostgresScanRepository {
	return &PostgresScanRepository{db: db}
}

// Create inserts a new scan run record.
func (r *PostgresScanRepository) Create(ctx context.Context, scan models.ScanRun) error {
	query := `
		INSERT INTO scans (
			id, status, trigger_type, started_at, completed_at,
			items_collected, new_patterns, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		scan.ID,
		scan.Status,
		scan.Trigger,
		scan.StartedAt,
		scan.CompletedAt,
		scan.ItemsCollected,
		scan.NewPatterns,
		scan.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}

	return nil
}

// MarkRunning transitions a scan from pending to running.
func (r *PostgresScanRepository) MarkRunning(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE scans SET status = $1 WHERE id = $2 AND status = $3",
		models.ScanStatusRunning, id, models.ScanStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark scan running: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("scan %s is not pending", id)
	}

	return nil
}

// Complete transitions a scan to completed with its final counters.
func (r *PostgresScanRepository) Complete(ctx context.Context, id string, itemsCollected, newPatterns int, completedAt time.Time) error {
	query := `
		UPDATE scans
		SET status = $1,
		    completed_at = $2,
		    items_collected = $3,
		    new_patterns = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		models.ScanStatusCompleted, completedAt, itemsCollected, newPatterns, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete scan: %w", err)
	}

	return nil
}

// Fail transitions a scan to failed, recording the error message and how
// many items had been persisted before the run aborted.
func (r *PostgresScanRepository) Fail(ctx context.Context, id string, errorMessage string, itemsCollected int, completedAt time.Time) error {
	query := `
		UPDATE scans
		SET status = $1,
		    completed_at = $2,
		    error_message = $3,
		    items_collected = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		models.ScanStatusFailed, completedAt, errorMessage, itemsCollected, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark scan failed: %w", err)
	}

	return nil
}

// GetByID retrieves a scan run by its ID. Returns nil if not found.
func (r *PostgresScanRepository) GetByID(ctx context.Context, id string) (*models.ScanRun, error) {
	query := `
		SELECT id, status, trigger_type, started_at, completed_at,
		       items_collected, new_patterns, error_message
		FROM scans
		WHERE id = $1
	`

	scan, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scan: %w", err)
	}

	return scan, nil
}

// LatestStartedAt returns the start time of the most recent scan run,
// or nil when no scans have been recorded yet.
func (r *PostgresScanRepository) LatestStartedAt(ctx context.Context) (*time.Time, error) {
	var startedAt time.Time
	err := r.db.QueryRowContext(ctx,
		"SELECT started_at FROM scans ORDER BY started_at DESC LIMIT 1",
	).Scan(&startedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest scan: %w", err)
	}

	return &startedAt, nil
}

// List retrieves the most recent scan runs, newest first.
func (r *PostgresScanRepository) List(ctx context.Context, limit int) ([]models.ScanRun, error) {
	query := `
		SELECT id, status, trigger_type, started_at, completed_at,
		       items_collected, new_patterns, error_message
		FROM scans
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	scans := []models.ScanRun{}
	for rows.Next() {
		scan, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scan row: %w", err)
		}
		scans = append(scans, *scan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return scans, nil
}

func (r *PostgresScanRepository) scanRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ScanRun, error) {
	var scan models.ScanRun
	var completedAt sql.NullTime
	var errorMessage sql.NullString

	err := scanner.Scan(
		&scan.ID,
		&scan.Status,
		&scan.Trigger,
		&scan.StartedAt,
		&completedAt,
		&scan.ItemsCollected,
		&scan.NewPatterns,
		&errorMessage,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		scan.CompletedAt = &completedAt.Time
	}
	if errorMessage.Valid {
		scan.ErrorMessage = errorMessage.String
	}

	return &scan, nil
}
