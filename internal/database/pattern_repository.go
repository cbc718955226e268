package database

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/echofort/threatintel/internal/models"
)

// PatternFilter narrows pattern listings. Zero values mean no filtering.
type PatternFilter struct {
	PatternType models.PatternType
	ScamType    models.ScamType
	ActiveOnly  bool
	Limit       int
}

// PostgresPatternRepository implements scanner.PatternRepository using PostgreSQL.
type PostgresPatternRepository struct {
	db *sql.DB
}

// NewPostgresPatternRepository creates a new PostgreSQL pattern repository.
func NewPostgresPatternRepository(db *sql.DB) *PostgresPatternRepository {
	return &PostgresPatternRepository{db: db}
}

// Upsert records occurrences of a pattern value atomically. A new row is
// created on first sight; existing rows accumulate occurrence_count, union
// their scam types, and advance last_seen. Returns true when a new row was
// inserted.
func (r *PostgresPatternRepository) Upsert(ctx context.Context, pattern models.ThreatPattern) (bool, error) {
	query := `
		INSERT INTO threat_patterns (
			id, pattern_type, pattern_value, occurrence_count, scam_types,
			first_seen, last_seen, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (pattern_type, pattern_value) DO UPDATE SET
			occurrence_count = threat_patterns.occurrence_count + EXCLUDED.occurrence_count,
			scam_types = ARRAY(
				SELECT DISTINCT t FROM unnest(threat_patterns.scam_types || EXCLUDED.scam_types) AS t
				ORDER BY t
			),
			last_seen = EXCLUDED.last_seen
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		pattern.ID,
		pattern.PatternType,
		pattern.PatternValue,
		pattern.OccurrenceCount,
		pq.Array(scamTypeStrings(pattern.ScamTypes)),
		pattern.FirstSeen,
		pattern.LastSeen,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert pattern: %w", err)
	}

	return inserted, nil
}

// GetByID retrieves a pattern by its ID. Returns nil if not found.
func (r *PostgresPatternRepository) GetByID(ctx context.Context, id string) (*models.ThreatPattern, error) {
	query := `
		SELECT id, pattern_type, pattern_value, occurrence_count, scam_types,
		       first_seen, last_seen, is_active
		FROM threat_patterns
		WHERE id = $1
	`

	pattern, err := r.scanPattern(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern: %w", err)
	}

	return pattern, nil
}

// List retrieves patterns matching the filter, most recently seen first.
func (r *PostgresPatternRepository) List(ctx context.Context, filter PatternFilter) ([]models.ThreatPattern, error) {
	builder := sq.Select(
		"id", "pattern_type", "pattern_value", "occurrence_count",
		"scam_types", "first_seen", "last_seen", "is_active",
	).
		From("threat_patterns").
		PlaceholderFormat(sq.Dollar).
		OrderBy("last_seen DESC", "occurrence_count DESC")

	if filter.PatternType != "" {
		builder = builder.Where(sq.Eq{"pattern_type": filter.PatternType})
	}
	if filter.ScamType != "" {
		builder = builder.Where("? = ANY(scam_types)", string(filter.ScamType))
	}
	if filter.ActiveOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pattern query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	patterns := []models.ThreatPattern{}
	for rows.Next() {
		pattern, err := r.scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		patterns = append(patterns, *pattern)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return patterns, nil
}

// SetActive enables or disables a pattern for downstream protection checks.
func (r *PostgresPatternRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE threat_patterns SET is_active = $1 WHERE id = $2",
		active, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update pattern status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("pattern with id %s not found", id)
	}

	return nil
}

func (r *PostgresPatternRepository) scanPattern(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ThreatPattern, error) {
	var pattern models.ThreatPattern
	var scamTypes []string

	err := scanner.Scan(
		&pattern.ID,
		&pattern.PatternType,
		&pattern.PatternValue,
		&pattern.OccurrenceCount,
		pq.Array(&scamTypes),
		&pattern.FirstSeen,
		&pattern.LastSeen,
		&pattern.Active,
	)
	if err != nil {
		return nil, err
	}

	pattern.ScamTypes = make([]models.ScamType, len(scamTypes))
	for i, st := range scamTypes {
		pattern.ScamTypes[i] = models.ScamType(st)
	}

	return &pattern, nil
}

func scamTypeStrings(types []models.ScamType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
