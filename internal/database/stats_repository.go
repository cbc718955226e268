package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/echofort/threatintel/internal/models"
)

// PostgresStatsRepository implements daily statistics aggregation using PostgreSQL.
type PostgresStatsRepository struct {
	db *sql.DB
}

// NewPostgresStatsRepository creates a new PostgreSQL stats repository.
func NewPostgresStatsRepository(db *sql.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

// GenerateDaily computes and stores aggregate statistics for the given
// calendar day. Re-running for the same day replaces the previous row.
func (r *PostgresStatsRepository) GenerateDaily(ctx context.Context, day time.Time) (*models.DailyStats, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		INSERT INTO daily_stats (
			stat_date, scans_run, scans_failed, items_collected, new_patterns, alerts_raised
		)
		SELECT
			$1::date,
			(SELECT COUNT(*) FROM scans WHERE started_at >= $2 AND started_at < $3),
			(SELECT COUNT(*) FROM scans WHERE started_at >= $2 AND started_at < $3 AND status = 'failed'),
			(SELECT COALESCE(SUM(items_collected), 0) FROM scans WHERE started_at >= $2 AND started_at < $3),
			(SELECT COALESCE(SUM(new_patterns), 0) FROM scans WHERE started_at >= $2 AND started_at < $3),
			(SELECT COUNT(*) FROM alerts WHERE created_at >= $2 AND created_at < $3)
		ON CONFLICT (stat_date) DO UPDATE SET
			scans_run = EXCLUDED.scans_run,
			scans_failed = EXCLUDED.scans_failed,
			items_collected = EXCLUDED.items_collected,
			new_patterns = EXCLUDED.new_patterns,
			alerts_raised = EXCLUDED.alerts_raised
		RETURNING stat_date, scans_run, scans_failed, items_collected, new_patterns, alerts_raised
	`

	var stats models.DailyStats
	err := r.db.QueryRowContext(ctx, query, dayStart, dayStart, dayEnd).Scan(
		&stats.Date,
		&stats.ScansRun,
		&stats.ScansFailed,
		&stats.ItemsCollected,
		&stats.NewPatterns,
		&stats.AlertsRaised,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate daily stats: %w", err)
	}

	return &stats, nil
}

// ListRecent retrieves the most recent daily statistics rows, newest first.
func (r *PostgresStatsRepository) ListRecent(ctx context.Context, limit int) ([]models.DailyStats, error) {
	query := `
		SELECT stat_date, scans_run, scans_failed, items_collected, new_patterns, alerts_raised
		FROM daily_stats
		ORDER BY stat_date DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	stats := []models.DailyStats{}
	for rows.Next() {
		var s models.DailyStats
		err := rows.Scan(
			&s.Date,
			&s.ScansRun,
			&s.ScansFailed,
			&s.ItemsCollected,
			&s.NewPatterns,
			&s.AlertsRaised,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return stats, nil
}
