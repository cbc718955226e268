package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/echofort/threatintel/internal/models"
)

// PostgresSourceRepository implements scanner.SourceRepository using PostgreSQL.
type PostgresSourceRepository struct {
	db *sql.DB
}

// NewPostgresSourceRepository creates a new PostgreSQL source repository.
func NewPostgresSourceRepository(db *sql.DB) *PostgresSourceRepository {
	return &PostgresSourceRepository{db: db}
}

// Store inserts a source, updating it on ID conflict.
func (r *PostgresSourceRepository) Store(ctx context.Context, source models.Source) error {
	query := `
		INSERT INTO sources (
			id, name, type, url, keywords, is_active, priority, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			url = EXCLUDED.url,
			keywords = EXCLUDED.keywords,
			is_active = EXCLUDED.is_active,
			priority = EXCLUDED.priority
	`

	_, err := r.db.ExecContext(ctx, query,
		source.ID,
		source.Name,
		source.Type,
		source.URL,
		pq.Array(source.Keywords),
		source.Active,
		source.Priority,
		source.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store source: %w", err)
	}

	return nil
}

// GetByID retrieves a source by its ID. Returns nil if not found.
func (r *PostgresSourceRepository) GetByID(ctx context.Context, id string) (*models.Source, error) {
	query := `
		SELECT id, name, type, url, keywords, is_active, priority, created_at
		FROM sources
		WHERE id = $1
	`

	var source models.Source
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&source.ID,
		&source.Name,
		&source.Type,
		&source.URL,
		pq.Array(&source.Keywords),
		&source.Active,
		&source.Priority,
		&source.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}

	return &source, nil
}

// ListActive retrieves all active sources ordered by priority (highest first).
func (r *PostgresSourceRepository) ListActive(ctx context.Context) ([]models.Source, error) {
	query := `
		SELECT id, name, type, url, keywords, is_active, priority, created_at
		FROM sources
		WHERE is_active = TRUE
		ORDER BY priority DESC, name ASC
	`

	return r.list(ctx, query)
}

// List retrieves all sources regardless of status.
func (r *PostgresSourceRepository) List(ctx context.Context) ([]models.Source, error) {
	query := `
		SELECT id, name, type, url, keywords, is_active, priority, created_at
		FROM sources
		ORDER BY priority DESC, name ASC
	`

	return r.list(ctx, query)
}

func (r *PostgresSourceRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Source, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	sources := []models.Source{}
	for rows.Next() {
		var source models.Source
		err := rows.Scan(
			&source.ID,
			&source.Name,
			&source.Type,
			&source.URL,
			pq.Array(&source.Keywords),
			&source.Active,
			&source.Priority,
			&source.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sources, nil
}

// Count returns the total number of sources.
func (r *PostgresSourceRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sources: %w", err)
	}
	return count, nil
}
