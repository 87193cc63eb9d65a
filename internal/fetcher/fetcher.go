// Package fetcher retrieves posts and comments from monitored sources.
// All sources sit behind an extraction gateway that returns pre-parsed
// records, so one client covers news sites, social feeds and messaging
// channels alike.
package fetcher

import (
	"context"

	"github.com/JartiX/Irk-media-monitoring/internal/domain"
)

// Fetcher produces posts and comments for one monitored source.
type Fetcher interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// Source returns the source identity: name, type and URL. The ID is
	// assigned by storage on first encounter.
	Source() domain.Source
	// SkipRelevanceCheck reports whether everything from this source is
	// relevant by definition, bypassing classification.
	SkipRelevanceCheck() bool
	// FetchPosts returns up to limit most recent posts.
	FetchPosts(ctx context.Context, limit int) ([]*domain.Post, error)
	// FetchComments returns up to limit comments for the post identified
	// by its external ID.
	FetchComments(ctx context.Context, externalID string, limit int) ([]*domain.Comment, error)
}
