// Package monitor orchestrates the incremental ingestion run: fetch posts
// per source, classify, upsert, then cascade into comments of relevant
// posts. Sources fail independently; one broken source never aborts a run.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/JartiX/Irk-media-monitoring/internal/cache"
	"github.com/JartiX/Irk-media-monitoring/internal/classifier"
	"github.com/JartiX/Irk-media-monitoring/internal/database"
	"github.com/JartiX/Irk-media-monitoring/internal/domain"
	"github.com/JartiX/Irk-media-monitoring/internal/fetcher"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
	"github.com/JartiX/Irk-media-monitoring/internal/metrics"
)

const (
	defaultPostsPerSource  = 50
	defaultCommentsPerPost = 100
	defaultCommentWorkers  = 4
)

// Config holds per-run limits.
type Config struct {
	// PostsPerSource caps how many recent posts are fetched per source.
	PostsPerSource int `yaml:"posts_per_source"`
	// CommentsPerPost caps how many comments are fetched per relevant post.
	CommentsPerPost int `yaml:"comments_per_post"`
	// CommentWorkers is the number of concurrent comment fetchers per source.
	CommentWorkers int `yaml:"comment_workers"`
}

// RunStats summarizes one monitoring run.
type RunStats struct {
	StartedAt time.Time
	Elapsed   time.Duration

	Sources      int
	SourceErrors int

	PostsProcessed int
	PostsNew       int
	PostsUpdated   int
	PostsRelevant  int

	CommentsProcessed int
	CommentsNew       int
	CommentsUpdated   int
	CommentsRelevant  int
	CommentsUseful    int

	Errors int
}

// Monitor runs the ingestion pipeline over the configured fetchers.
type Monitor struct {
	cfg      Config
	fetchers []fetcher.Fetcher
	store    *database.Store
	pipeline *classifier.Pipeline
	flagger  *classifier.CommentFlagger
	cache    *cache.ScoreCache
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// New assembles the monitor. scoreCache may be nil to disable caching.
func New(
	cfg Config,
	fetchers []fetcher.Fetcher,
	store *database.Store,
	pipeline *classifier.Pipeline,
	flagger *classifier.CommentFlagger,
	scoreCache *cache.ScoreCache,
	m *metrics.Metrics,
	log logger.Logger,
) *Monitor {
	if cfg.PostsPerSource <= 0 {
		cfg.PostsPerSource = defaultPostsPerSource
	}
	if cfg.CommentsPerPost <= 0 {
		cfg.CommentsPerPost = defaultCommentsPerPost
	}
	if cfg.CommentWorkers <= 0 {
		cfg.CommentWorkers = defaultCommentWorkers
	}
	return &Monitor{
		cfg:      cfg,
		fetchers: fetchers,
		store:    store,
		pipeline: pipeline,
		flagger:  flagger,
		cache:    scoreCache,
		metrics:  m,
		logger:   log,
	}
}

// Run executes one full monitoring pass and returns its statistics.
func (m *Monitor) Run(ctx context.Context) RunStats {
	stats := RunStats{StartedAt: time.Now()}
	m.logger.Info("monitoring run started", logger.Int("sources", len(m.fetchers)))

	for _, f := range m.fetchers {
		if ctx.Err() != nil {
			m.logger.Warn("run interrupted", logger.Error(ctx.Err()))
			break
		}

		if err := m.processSource(ctx, f, &stats); err != nil {
			m.logger.Error("source processing failed",
				logger.String("source", f.Name()),
				logger.Error(err))
			m.metrics.FetchErrors.WithLabelValues(f.Name()).Inc()
			stats.SourceErrors++
			stats.Errors++
			continue
		}
		stats.Sources++
	}

	stats.Elapsed = time.Since(stats.StartedAt)
	m.metrics.ObserveRun(stats.Elapsed)

	m.logger.Info("monitoring run finished",
		logger.Int("sources_ok", stats.Sources),
		logger.Int("source_errors", stats.SourceErrors),
		logger.Int("posts_processed", stats.PostsProcessed),
		logger.Int("posts_new", stats.PostsNew),
		logger.Int("posts_updated", stats.PostsUpdated),
		logger.Int("posts_relevant", stats.PostsRelevant),
		logger.Int("comments_processed", stats.CommentsProcessed),
		logger.Int("comments_relevant", stats.CommentsRelevant),
		logger.Int("comments_useful", stats.CommentsUseful),
		logger.Int("errors", stats.Errors),
		logger.Duration("elapsed", stats.Elapsed))
	return stats
}

func (m *Monitor) processSource(ctx context.Context, f fetcher.Fetcher, stats *RunStats) error {
	template := f.Source()
	src, err := m.store.Sources.GetOrCreate(ctx, &template)
	if err != nil {
		return err
	}
	if !src.IsActive {
		m.logger.Info("source deactivated, skipping", logger.String("source", f.Name()))
		return nil
	}

	posts, err := f.FetchPosts(ctx, m.cfg.PostsPerSource)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.SourceID = src.ID
	}

	if f.SkipRelevanceCheck() {
		// Curated sources bypass classification entirely.
		for _, p := range posts {
			p.IsRelevant = true
			p.RelevanceScore = 1.0
		}
	} else {
		m.scorePosts(ctx, posts)
	}

	var relevant []*domain.Post
	for _, p := range posts {
		created, upsertErr := m.store.Posts.Upsert(ctx, p)
		if upsertErr != nil {
			m.logger.Error("post upsert failed",
				logger.String("source", f.Name()),
				logger.String("external_id", p.ExternalID),
				logger.Error(upsertErr))
			stats.Errors++
			continue
		}

		stats.PostsProcessed++
		if created {
			stats.PostsNew++
		} else {
			stats.PostsUpdated++
		}
		if p.IsRelevant {
			stats.PostsRelevant++
			relevant = append(relevant, p)
			m.metrics.PostsRelevant.WithLabelValues(f.Name()).Inc()
		}
		m.metrics.PostsProcessed.WithLabelValues(f.Name()).Inc()
	}

	m.processComments(ctx, f, relevant, stats)

	m.logger.Info("source processed",
		logger.String("source", f.Name()),
		logger.Int("posts", len(posts)),
		logger.Int("relevant", len(relevant)))
	return nil
}

// scorePosts classifies posts, serving repeat content from the cache.
func (m *Monitor) scorePosts(ctx context.Context, posts []*domain.Post) {
	var toScore []*domain.Post
	for _, p := range posts {
		if v, ok := m.cache.Get(ctx, p.FullText()); ok {
			p.IsRelevant = v.Relevant
			p.RelevanceScore = v.Score
			m.metrics.CacheHits.Inc()
			continue
		}
		m.metrics.CacheMisses.Inc()
		toScore = append(toScore, p)
	}

	m.pipeline.ScorePosts(ctx, toScore)

	for _, p := range toScore {
		m.cache.Set(ctx, p.FullText(), cache.Verdict{
			Relevant: p.IsRelevant,
			Score:    p.RelevanceScore,
		})
	}
}

// processComments fetches and flags comments of relevant posts with a
// bounded worker pool.
func (m *Monitor) processComments(ctx context.Context, f fetcher.Fetcher, posts []*domain.Post, stats *RunStats) {
	if len(posts) == 0 {
		return
	}

	jobs := make(chan *domain.Post)
	var wg sync.WaitGroup
	var mu sync.Mutex

	workers := m.cfg.CommentWorkers
	if workers > len(posts) {
		workers = len(posts)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for post := range jobs {
				res := m.processPostComments(ctx, f, post)
				mu.Lock()
				stats.CommentsProcessed += res.processed
				stats.CommentsNew += res.created
				stats.CommentsUpdated += res.updated
				stats.CommentsRelevant += res.relevant
				stats.CommentsUseful += res.useful
				stats.Errors += res.errors
				mu.Unlock()
			}
		}()
	}

	for _, post := range posts {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- post:
		}
	}
	close(jobs)
	wg.Wait()
}

type commentResult struct {
	processed int
	created   int
	updated   int
	relevant  int
	useful    int
	errors    int
}

func (m *Monitor) processPostComments(ctx context.Context, f fetcher.Fetcher, post *domain.Post) commentResult {
	var res commentResult

	comments, err := f.FetchComments(ctx, post.ExternalID, m.cfg.CommentsPerPost)
	if err != nil {
		m.logger.Error("comment fetch failed",
			logger.String("source", f.Name()),
			logger.String("post", post.ExternalID),
			logger.Error(err))
		m.metrics.FetchErrors.WithLabelValues(f.Name()).Inc()
		res.errors++
		return res
	}
	if len(comments) == 0 {
		return res
	}

	counts := m.flagger.Flag(comments)
	res.relevant = counts.Relevant
	res.useful = counts.Useful

	for _, c := range comments {
		c.PostID = post.ID
		created, upsertErr := m.store.Comments.Upsert(ctx, c)
		if upsertErr != nil {
			m.logger.Error("comment upsert failed",
				logger.String("post", post.ExternalID),
				logger.String("external_id", c.ExternalID),
				logger.Error(upsertErr))
			res.errors++
			continue
		}
		res.processed++
		if created {
			res.created++
		} else {
			res.updated++
		}
		m.metrics.CommentsProcessed.WithLabelValues(f.Name()).Inc()
	}

	total, err := m.store.Comments.CountByPost(ctx, post.ID)
	if err != nil {
		m.logger.Warn("comments count query failed",
			logger.String("post", post.ExternalID),
			logger.Error(err))
		return res
	}
	if err := m.store.Posts.UpdateCommentsCount(ctx, post.ID, total); err != nil {
		m.logger.Warn("comments count update failed",
			logger.String("post", post.ExternalID),
			logger.Error(err))
	}
	return res
}
