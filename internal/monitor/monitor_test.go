package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JartiX/Irk-media-monitoring/internal/classifier"
	"github.com/JartiX/Irk-media-monitoring/internal/database"
	"github.com/JartiX/Irk-media-monitoring/internal/domain"
	"github.com/JartiX/Irk-media-monitoring/internal/fetcher"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
	"github.com/JartiX/Irk-media-monitoring/internal/metrics"
	"github.com/JartiX/Irk-media-monitoring/internal/ruleset"
)

type fakeFetcher struct {
	name       string
	skip       bool
	posts      []*domain.Post
	comments   map[string][]*domain.Comment
	postsErr   error
	fetchCalls int
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Source() domain.Source {
	return domain.Source{Name: f.name, Type: domain.SourceTypeNews, URL: "https://" + f.name, IsActive: true}
}

func (f *fakeFetcher) SkipRelevanceCheck() bool { return f.skip }

func (f *fakeFetcher) FetchPosts(ctx context.Context, limit int) ([]*domain.Post, error) {
	f.fetchCalls++
	if f.postsErr != nil {
		return nil, f.postsErr
	}
	return f.posts, nil
}

func (f *fakeFetcher) FetchComments(ctx context.Context, externalID string, limit int) ([]*domain.Comment, error) {
	return f.comments[externalID], nil
}

func newTestMonitor(t *testing.T, fetchers []fetcher.Fetcher, mock func(sqlmock.Sqlmock)) *Monitor {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlMock.MatchExpectationsInOrder(false)
	mock(sqlMock)

	rules := ruleset.Default()
	scorer := classifier.NewKeywordScorer(rules, logger.NewNop())
	pipeline := classifier.NewPipeline(scorer, classifier.NewUnavailable(), rules, logger.NewNop())
	flagger := classifier.NewCommentFlagger(scorer, logger.NewNop())

	return New(
		Config{CommentWorkers: 1},
		fetchers,
		database.NewStore(sqlx.NewDb(db, "postgres")),
		pipeline,
		flagger,
		nil,
		metrics.New(prometheus.NewRegistry()),
		logger.NewNop(),
	)
}

func sourceRow(id, name string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "type", "url", "is_active", "created_at"}).
		AddRow(id, name, "news", "https://"+name, true, time.Now())
}

func inactiveSourceRow(id, name string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "type", "url", "is_active", "created_at"}).
		AddRow(id, name, "news", "https://"+name, false, time.Now())
}

func upsertRow(id string, inserted bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "inserted"}).
		AddRow(id, now, now, inserted)
}

func TestRunFullPass(t *testing.T) {
	f := &fakeFetcher{
		name: "irk-news",
		posts: []*domain.Post{
			{ExternalID: "p1", Content: "Экскурсия на остров с видом на озеро, гид, маршрут"},
			{ExternalID: "p2", Content: "Лучшее казино ждет вас"},
		},
		comments: map[string][]*domain.Comment{
			"p1": {
				{ExternalID: "c1", Content: "Советую взять экскурсию на Ольхон, цена адекватная"},
				{ExternalID: "c2", Content: "Круто!"},
			},
		},
	}

	m := newTestMonitor(t, []fetcher.Fetcher{f}, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("INSERT INTO sources").WillReturnRows(sourceRow("src-1", "irk-news"))
		mock.ExpectQuery("INSERT INTO posts").WillReturnRows(upsertRow("post-1", true))
		mock.ExpectQuery("INSERT INTO posts").WillReturnRows(upsertRow("post-2", true))
		mock.ExpectQuery("INSERT INTO comments").WillReturnRows(upsertRow("comment-1", true))
		mock.ExpectQuery("INSERT INTO comments").WillReturnRows(upsertRow("comment-2", false))
		mock.ExpectQuery("SELECT count").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec("UPDATE posts SET comments_count").
			WithArgs("post-1", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
	})

	stats := m.Run(context.Background())

	assert.Equal(t, 1, stats.Sources)
	assert.Equal(t, 0, stats.SourceErrors)
	assert.Equal(t, 2, stats.PostsProcessed)
	assert.Equal(t, 2, stats.PostsNew)
	assert.Equal(t, 0, stats.PostsUpdated)
	assert.Equal(t, 1, stats.PostsRelevant)
	assert.Equal(t, 2, stats.CommentsProcessed)
	assert.Equal(t, 1, stats.CommentsNew)
	assert.Equal(t, 1, stats.CommentsUpdated)
	assert.Equal(t, 1, stats.CommentsRelevant)
	assert.Equal(t, 1, stats.CommentsUseful)
	assert.Equal(t, 0, stats.Errors)
	assert.NotZero(t, stats.Elapsed)
}

func TestRunSkipRelevanceCheck(t *testing.T) {
	var upserted *domain.Post
	f := &fakeFetcher{
		name: "official-feed",
		skip: true,
		posts: []*domain.Post{
			{ExternalID: "p1", Content: "Лучшее казино ждет вас"},
		},
	}
	upserted = f.posts[0]

	m := newTestMonitor(t, []fetcher.Fetcher{f}, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("INSERT INTO sources").WillReturnRows(sourceRow("src-1", "official-feed"))
		mock.ExpectQuery("INSERT INTO posts").WillReturnRows(upsertRow("post-1", true))
	})

	stats := m.Run(context.Background())

	// Curated sources bypass classification, ban list included.
	assert.True(t, upserted.IsRelevant)
	assert.Equal(t, 1.0, upserted.RelevanceScore)
	assert.Equal(t, 1, stats.PostsRelevant)
	assert.Equal(t, 0, stats.Errors)
}

func TestRunSkipsDeactivatedSource(t *testing.T) {
	f := &fakeFetcher{
		name:  "paused",
		posts: []*domain.Post{{ExternalID: "p1", Content: "Отдых на Байкале"}},
	}

	m := newTestMonitor(t, []fetcher.Fetcher{f}, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("INSERT INTO sources").WillReturnRows(inactiveSourceRow("src-1", "paused"))
	})

	stats := m.Run(context.Background())

	assert.Equal(t, 0, f.fetchCalls, "deactivated source must not be fetched")
	assert.Equal(t, 1, stats.Sources)
	assert.Equal(t, 0, stats.PostsProcessed)
	assert.Equal(t, 0, stats.Errors)
}

func TestRunToleratesCommentsCountFailure(t *testing.T) {
	f := &fakeFetcher{
		name: "irk-news",
		posts: []*domain.Post{
			{ExternalID: "p1", Content: "Экскурсия на остров с видом на озеро, гид, маршрут"},
		},
		comments: map[string][]*domain.Comment{
			"p1": {{ExternalID: "c1", Content: "Советую взять экскурсию на Ольхон, цена адекватная"}},
		},
	}

	m := newTestMonitor(t, []fetcher.Fetcher{f}, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("INSERT INTO sources").WillReturnRows(sourceRow("src-1", "irk-news"))
		mock.ExpectQuery("INSERT INTO posts").WillReturnRows(upsertRow("post-1", true))
		mock.ExpectQuery("INSERT INTO comments").WillReturnRows(upsertRow("comment-1", true))
		mock.ExpectQuery("SELECT count").WillReturnError(errors.New("connection reset"))
	})

	stats := m.Run(context.Background())

	// A failed count query is logged, not counted as a run error.
	assert.Equal(t, 1, stats.Sources)
	assert.Equal(t, 1, stats.CommentsProcessed)
	assert.Equal(t, 0, stats.Errors)
}

func TestRunIsolatesSourceFailure(t *testing.T) {
	broken := &fakeFetcher{name: "broken", postsErr: errors.New("gateway returned status 502")}
	healthy := &fakeFetcher{
		name: "healthy",
		posts: []*domain.Post{
			{ExternalID: "p1", Content: "Отдых на Байкале"},
		},
	}

	m := newTestMonitor(t, []fetcher.Fetcher{broken, healthy}, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("INSERT INTO sources").WillReturnRows(sourceRow("src-broken", "broken"))
		mock.ExpectQuery("INSERT INTO sources").WillReturnRows(sourceRow("src-healthy", "healthy"))
		mock.ExpectQuery("INSERT INTO posts").WillReturnRows(upsertRow("post-1", true))
	})

	stats := m.Run(context.Background())

	assert.Equal(t, 1, stats.Sources)
	assert.Equal(t, 1, stats.SourceErrors)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.PostsProcessed)
	assert.Equal(t, 0, stats.PostsRelevant)
}

func TestRunRespectsCancelledContext(t *testing.T) {
	f := &fakeFetcher{name: "never-called"}
	m := newTestMonitor(t, []fetcher.Fetcher{f}, func(mock sqlmock.Sqlmock) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats := m.Run(ctx)
	assert.Equal(t, 0, stats.Sources)
	assert.Equal(t, 0, stats.PostsProcessed)
}
