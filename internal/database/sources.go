package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/JartiX/Irk-media-monitoring/internal/domain"
)

// SourcesRepository handles database operations for monitored sources.
type SourcesRepository struct {
	db *sqlx.DB
}

// NewSourcesRepository creates a new sources repository.
func NewSourcesRepository(db *sqlx.DB) *SourcesRepository {
	return &SourcesRepository{db: db}
}

// GetByURL retrieves a source by its URL, the source identity key.
func (r *SourcesRepository) GetByURL(ctx context.Context, url string) (*domain.Source, error) {
	var src domain.Source
	query := `
		SELECT id, name, type, url, is_active, created_at
		FROM sources
		WHERE url = $1
	`

	if err := r.db.GetContext(ctx, &src, query, url); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get source by url: %w", err)
	}
	return &src, nil
}

// GetOrCreate returns the source with the given URL, creating it on first
// encounter. Concurrent creation of the same URL resolves to one row.
func (r *SourcesRepository) GetOrCreate(ctx context.Context, src *domain.Source) (*domain.Source, error) {
	if src.ID == "" {
		src.ID = uuid.NewString()
	}

	query := `
		INSERT INTO sources (id, name, type, url, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (url) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, type, url, is_active, created_at
	`

	var out domain.Source
	err := r.db.GetContext(ctx, &out, query, src.ID, src.Name, src.Type, src.URL, src.IsActive)
	if err != nil {
		return nil, fmt.Errorf("get or create source %s: %w", src.URL, err)
	}
	return &out, nil
}

// List retrieves all sources, active first.
func (r *SourcesRepository) List(ctx context.Context) ([]*domain.Source, error) {
	var sources []*domain.Source
	query := `
		SELECT id, name, type, url, is_active, created_at
		FROM sources
		ORDER BY is_active DESC, name
	`

	if err := r.db.SelectContext(ctx, &sources, query); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// SetActive toggles a source's active flag.
func (r *SourcesRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sources SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set source active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
