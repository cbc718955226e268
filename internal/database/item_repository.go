package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/echofort/threatintel/internal/models"
)

// PostgresItemRepository implements scanner.ItemRepository using PostgreSQL.
type PostgresItemRepository struct {
	db *sql.DB
}

// NewPostgresItemRepository creates a new PostgreSQL threat item repository.
func NewPostgresItemRepository(db *sql.DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

// Store inserts a threat item.
func (r *PostgresItemRepository) Store(ctx context.Context, item models.ThreatItem) error {
	query := `
		INSERT INTO threat_items (
			id, scan_id, source_id, scam_type, severity, confidence,
			phone_numbers, urls, keywords, raw_excerpt, collected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.ScanID,
		item.SourceID,
		item.ScamType,
		item.Severity,
		item.Confidence,
		pq.Array(item.PhoneNumbers),
		pq.Array(item.URLs),
		pq.Array(item.Keywords),
		item.RawExcerpt,
		item.CollectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store threat item: %w", err)
	}

	return nil
}

// ListByScan retrieves all items collected during a scan run.
func (r *PostgresItemRepository) ListByScan(ctx context.Context, scanID string) ([]models.ThreatItem, error) {
	query := `
		SELECT id, scan_id, source_id, scam_type, severity, confidence,
		       phone_numbers, urls, keywords, raw_excerpt, collected_at
		FROM threat_items
		WHERE scan_id = $1
		ORDER BY collected_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query threat items: %w", err)
	}
	defer rows.Close()

	items := []models.ThreatItem{}
	for rows.Next() {
		var item models.ThreatItem
		err := rows.Scan(
			&item.ID,
			&item.ScanID,
			&item.SourceID,
			&item.ScamType,
			&item.Severity,
			&item.Confidence,
			pq.Array(&item.PhoneNumbers),
			pq.Array(&item.URLs),
			pq.Array(&item.Keywords),
			&item.RawExcerpt,
			&item.CollectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan threat item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// CountBySeverity returns the number of items at or above the given severity
// collected during a scan run.
func (r *PostgresItemRepository) CountBySeverity(ctx context.Context, scanID string, minSeverity int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM threat_items WHERE scan_id = $1 AND severity >= $2",
		scanID, minSeverity,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count threat items: %w", err)
	}
	return count, nil
}
