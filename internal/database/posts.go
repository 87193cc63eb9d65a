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

// PostsRepository handles database operations for posts.
type PostsRepository struct {
	db *sqlx.DB
}

// NewPostsRepository creates a new posts repository.
func NewPostsRepository(db *sqlx.DB) *PostsRepository {
	return &PostsRepository{db: db}
}

// GetByExternalID retrieves a post by its dedup key.
func (r *PostsRepository) GetByExternalID(ctx context.Context, sourceID, externalID string) (*domain.Post, error) {
	var post domain.Post
	query := `
		SELECT id, source_id, external_id, title, content, url, published_at,
		       likes_count, views_count, comments_count,
		       relevance_score, is_relevant, created_at, updated_at
		FROM posts
		WHERE source_id = $1 AND external_id = $2
	`

	if err := r.db.GetContext(ctx, &post, query, sourceID, externalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post by external id: %w", err)
	}
	return &post, nil
}

// Upsert inserts a post or, when the (source_id, external_id) key already
// exists, refreshes its mutable fields. The stored id and created_at are
// never touched. It reports whether a new row was created and fills the
// post's ID and timestamps from the database.
func (r *PostsRepository) Upsert(ctx context.Context, post *domain.Post) (bool, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}

	query := `
		INSERT INTO posts (id, source_id, external_id, title, content, url, published_at,
		                   likes_count, views_count, comments_count,
		                   relevance_score, is_relevant, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		ON CONFLICT (source_id, external_id) DO UPDATE SET
			title           = EXCLUDED.title,
			content         = EXCLUDED.content,
			url             = EXCLUDED.url,
			published_at    = EXCLUDED.published_at,
			likes_count     = EXCLUDED.likes_count,
			views_count     = EXCLUDED.views_count,
			comments_count  = EXCLUDED.comments_count,
			relevance_score = EXCLUDED.relevance_score,
			is_relevant     = EXCLUDED.is_relevant,
			updated_at      = now()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`

	row := r.db.QueryRowContext(ctx, query,
		post.ID, post.SourceID, post.ExternalID, post.Title, post.Content, post.URL,
		post.PublishedAt, post.LikesCount, post.ViewsCount, post.CommentsCount,
		post.RelevanceScore, post.IsRelevant,
	)

	var inserted bool
	if err := row.Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt, &inserted); err != nil {
		return false, fmt.Errorf("upsert post %s: %w", post.ExternalID, err)
	}
	return inserted, nil
}

// UpdateCommentsCount sets the stored comment counter for a post.
func (r *PostsRepository) UpdateCommentsCount(ctx context.Context, postID string, count int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET comments_count = $2, updated_at = now() WHERE id = $1`,
		postID, count)
	if err != nil {
		return fmt.Errorf("update comments count: %w", err)
	}
	return nil
}

// ListRelevant retrieves the most recent relevant posts.
func (r *PostsRepository) ListRelevant(ctx context.Context, limit int) ([]*domain.Post, error) {
	var posts []*domain.Post
	query := `
		SELECT id, source_id, external_id, title, content, url, published_at,
		       likes_count, views_count, comments_count,
		       relevance_score, is_relevant, created_at, updated_at
		FROM posts
		WHERE is_relevant
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1
	`

	if err := r.db.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, fmt.Errorf("list relevant posts: %w", err)
	}
	return posts, nil
}
