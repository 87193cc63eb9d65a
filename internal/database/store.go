package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/JartiX/Irk-media-monitoring/internal/domain"
)

// Store bundles the repositories over one connection pool.
type Store struct {
	db *sqlx.DB

	Sources  *SourcesRepository
	Posts    *PostsRepository
	Comments *CommentsRepository
}

// NewStore builds the repositories over db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:       db,
		Sources:  NewSourcesRepository(db),
		Posts:    NewPostsRepository(db),
		Comments: NewCommentsRepository(db),
	}
}

// Stats returns the aggregate counts over everything persisted so far.
func (s *Store) Stats(ctx context.Context) (*domain.StoreStats, error) {
	var stats domain.StoreStats
	query := `
		SELECT
			(SELECT count(*) FROM sources)                          AS sources_count,
			(SELECT count(*) FROM posts)                            AS posts_count,
			(SELECT count(*) FROM posts WHERE is_relevant)          AS relevant_posts_count,
			(SELECT count(*) FROM comments)                         AS comments_count,
			(SELECT count(*) FROM comments WHERE is_clean)          AS clean_comments_count,
			(SELECT count(*) FROM comments WHERE is_political)      AS political_comments,
			(SELECT count(*) FROM comments WHERE is_profane)        AS profane_comments,
			(SELECT count(*) FROM comments WHERE is_relevant)       AS relevant_comments
	`

	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}
	return &stats, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
