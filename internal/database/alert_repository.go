package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/echofort/threatintel/internal/models"
)

// AlertFilter narrows alert listings. Zero values mean no filtering.
type AlertFilter struct {
	Status      models.AlertStatus
	MinSeverity int
	Limit       int
}

// PostgresAlertRepository implements scanner.AlertRepository using PostgreSQL.
type PostgresAlertRepository struct {
	db *sql.DB
}

// NewPostgresAlertRepository creates a new PostgreSQL alert repository.
func NewPostgresAlertRepository(db *sql.DB) *PostgresAlertRepository {
	return &PostgresAlertRepository{db: db}
}

// Store inserts an alert.
func (r *PostgresAlertRepository) Store(ctx context.Context, alert models.Alert) error {
	query := `
		INSERT INTO alerts (
			id, alert_type, severity, title, description,
			related_item_ids, status, created_at, acknowledged_at, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.AlertType,
		alert.Severity,
		alert.Title,
		alert.Description,
		pq.Array(alert.RelatedItemIDs),
		alert.Status,
		alert.CreatedAt,
		alert.AcknowledgedAt,
		alert.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store alert: %w", err)
	}

	return nil
}

// GetByID retrieves an alert by its ID. Returns nil if not found.
func (r *PostgresAlertRepository) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	query := `
		SELECT id, alert_type, severity, title, description,
		       related_item_ids, status, created_at, acknowledged_at, resolved_at
		FROM alerts
		WHERE id = $1
	`

	alert, err := r.scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alert: %w", err)
	}

	return alert, nil
}

// List retrieves alerts matching the filter, newest first.
func (r *PostgresAlertRepository) List(ctx context.Context, filter AlertFilter) ([]models.Alert, error) {
	builder := sq.Select(
		"id", "alert_type", "severity", "title", "description",
		"related_item_ids", "status", "created_at", "acknowledged_at", "resolved_at",
	).
		From("alerts").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC")

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.MinSeverity > 0 {
		builder = builder.Where(sq.GtOrEq{"severity": filter.MinSeverity})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build alert query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		alert, err := r.scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return alerts, nil
}

// Acknowledge transitions a new alert to acknowledged.
func (r *PostgresAlertRepository) Acknowledge(ctx context.Context, id string, at time.Time) error {
	return r.transition(ctx, id,
		models.AlertStatusNew, models.AlertStatusAcknowledged,
		"acknowledged_at", at,
	)
}

// Resolve transitions a new or acknowledged alert to resolved.
func (r *PostgresAlertRepository) Resolve(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE alerts
		SET status = $1, resolved_at = $2
		WHERE id = $3 AND status IN ($4, $5)
	`

	result, err := r.db.ExecContext(ctx, query,
		models.AlertStatusResolved, at, id,
		models.AlertStatusNew, models.AlertStatusAcknowledged,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("alert %s not found or already resolved", id)
	}

	return nil
}

func (r *PostgresAlertRepository) transition(ctx context.Context, id string, from, to models.AlertStatus, timestampColumn string, at time.Time) error {
	query := fmt.Sprintf(
		"UPDATE alerts SET status = $1, %s = $2 WHERE id = $3 AND status = $4",
		timestampColumn,
	)

	result, err := r.db.ExecContext(ctx, query, to, at, id, from)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("alert %s not found or not in %s status", id, from)
	}

	return nil
}

func (r *PostgresAlertRepository) scanAlert(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Alert, error) {
	var alert models.Alert
	var acknowledgedAt, resolvedAt sql.NullTime

	err := scanner.Scan(
		&alert.ID,
		&alert.AlertType,
		&alert.Severity,
		&alert.Title,
		&alert.Description,
		pq.Array(&alert.RelatedItemIDs),
		&alert.Status,
		&alert.CreatedAt,
		&acknowledgedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	if acknowledgedAt.Valid {
		alert.AcknowledgedAt = &acknowledgedAt.Time
	}
	if resolvedAt.Valid {
		alert.ResolvedAt = &resolvedAt.Time
	}

	return &alert, nil
}
