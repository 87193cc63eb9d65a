package fetcher

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/JartiX/Irk-media-monitoring/internal/domain"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
	"github.com/JartiX/Irk-media-monitoring/internal/retry"
)

// Retrying decorates a Fetcher with rate limiting and retry on transient
// failures. The limiter paces requests to one source; retries go through
// the limiter again, so a rate-limited gateway is never hammered.
type Retrying struct {
	inner   Fetcher
	cfg     retry.Config
	limiter *rate.Limiter
	logger  logger.Logger
}

// WithRetry wraps inner. requestsPerSecond <= 0 disables pacing.
func WithRetry(inner Fetcher, cfg retry.Config, requestsPerSecond float64, log logger.Logger) *Retrying {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Retrying{
		inner:   inner,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  log.With(logger.String("source", inner.Name())),
	}
}

func (r *Retrying) Name() string { return r.inner.Name() }

func (r *Retrying) Source() domain.Source { return r.inner.Source() }

func (r *Retrying) SkipRelevanceCheck() bool { return r.inner.SkipRelevanceCheck() }

func (r *Retrying) FetchPosts(ctx context.Context, limit int) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := retry.Do(ctx, r.cfg, func() error {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		var err error
		posts, err = r.inner.FetchPosts(ctx, limit)
		if err != nil {
			r.logger.Warn("fetch posts attempt failed", logger.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *Retrying) FetchComments(ctx context.Context, externalID string, limit int) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := retry.Do(ctx, r.cfg, func() error {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		var err error
		comments, err = r.inner.FetchComments(ctx, externalID, limit)
		if err != nil {
			r.logger.Warn("fetch comments attempt failed", logger.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}
