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

// CommentsRepository handles database operations for comments.
type CommentsRepository struct {
	db *sqlx.DB
}

// NewCommentsRepository creates a new comments repository.
func NewCommentsRepository(db *sqlx.DB) *CommentsRepository {
	return &CommentsRepository{db: db}
}

// GetByExternalID retrieves a comment by its dedup key.
func (r *CommentsRepository) GetByExternalID(ctx context.Context, postID, externalID string) (*domain.Comment, error) {
	var comment domain.Comment
	query := `
		SELECT id, post_id, external_id, content, author, published_at, likes_count,
		       is_clean, is_relevant, is_political, is_profane, created_at, updated_at
		FROM comments
		WHERE post_id = $1 AND external_id = $2
	`

	if err := r.db.GetContext(ctx, &comment, query, postID, externalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get comment by external id: %w", err)
	}
	return &comment, nil
}

// Upsert inserts a comment or refreshes the mutable fields of an existing
// one keyed by (post_id, external_id). It reports whether a new row was
// created.
func (r *CommentsRepository) Upsert(ctx context.Context, comment *domain.Comment) (bool, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	query := `
		INSERT INTO comments (id, post_id, external_id, content, author, published_at, likes_count,
		                      is_clean, is_relevant, is_political, is_profane, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		ON CONFLICT (post_id, external_id) DO UPDATE SET
			content      = EXCLUDED.content,
			author       = EXCLUDED.author,
			published_at = EXCLUDED.published_at,
			likes_count  = EXCLUDED.likes_count,
			is_clean     = EXCLUDED.is_clean,
			is_relevant  = EXCLUDED.is_relevant,
			is_political = EXCLUDED.is_political,
			is_profane   = EXCLUDED.is_profane,
			updated_at   = now()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`

	row := r.db.QueryRowContext(ctx, query,
		comment.ID, comment.PostID, comment.ExternalID, comment.Content, comment.Author,
		comment.PublishedAt, comment.LikesCount,
		comment.IsClean, comment.IsRelevant, comment.IsPolitical, comment.IsProfane,
	)

	var inserted bool
	if err := row.Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt, &inserted); err != nil {
		return false, fmt.Errorf("upsert comment %s: %w", comment.ExternalID, err)
	}
	return inserted, nil
}

// CountByPost returns the number of stored comments for a post.
func (r *CommentsRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT count(*) FROM comments WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}
