package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JartiX/Irk-media-monitoring/internal/classifier"
	"github.com/JartiX/Irk-media-monitoring/internal/database"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
	"github.com/JartiX/Irk-media-monitoring/internal/ruleset"
)

func newTestRouter(t *testing.T, trigger RunTrigger, mock func(sqlmock.Sqlmock)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	if mock != nil {
		mock(sqlMock)
	}

	rules := ruleset.Default()
	scorer := classifier.NewKeywordScorer(rules, logger.NewNop())
	backend := classifier.NewUnavailable()
	pipeline := classifier.NewPipeline(scorer, backend, rules, logger.NewNop())

	if trigger == nil {
		trigger = func() bool { return true }
	}

	handler := NewHandler(database.NewStore(sqlx.NewDb(db, "postgres")), pipeline, backend, trigger, logger.NewNop())
	router := gin.New()
	SetupRoutes(router, handler)
	return router
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestGetStats(t *testing.T) {
	router := newTestRouter(t, nil, func(mock sqlmock.Sqlmock) {
		columns := []string{
			"sources_count", "posts_count", "relevant_posts_count", "comments_count",
			"clean_comments_count", "political_comments", "profane_comments", "relevant_comments",
		}
		mock.ExpectQuery("SELECT").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(2, 50, 20, 300, 280, 10, 12, 40))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"posts_count":50`)
	assert.Contains(t, w.Body.String(), `"relevant_posts_count":20`)
}

func TestListRelevantPosts(t *testing.T) {
	router := newTestRouter(t, nil, func(mock sqlmock.Sqlmock) {
		columns := []string{
			"id", "source_id", "external_id", "title", "content", "url", "published_at",
			"likes_count", "views_count", "comments_count",
			"relevance_score", "is_relevant", "created_at", "updated_at",
		}
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM posts").
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("post-1", "src-1", "p1", "Экскурсии по Ольхону", "", "", nil, 3, 100, 5, 0.7, true, now, now))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/relevant?limit=2", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"external_id":"p1"`)
	assert.Contains(t, w.Body.String(), `"relevance_score":0.7`)
}

func TestListRelevantPostsBadLimit(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/relevant?limit=zero", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassify(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	body := strings.NewReader(`{"text": "Экскурсия на остров с видом на озеро, гид, маршрут"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"relevant":true`)
}

func TestClassifyMissingText(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerRunConflict(t *testing.T) {
	busy := func() bool { return false }
	router := newTestRouter(t, busy, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTriggerRunAccepted(t *testing.T) {
	router := newTestRouter(t, func() bool { return true }, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRunGateSerializesRuns(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	gate := NewRunGate(func(ctx context.Context) {
		close(started)
		<-release
	}, logger.NewNop())

	require.True(t, gate())
	<-started
	assert.False(t, gate(), "second trigger must be rejected while running")
	close(release)
}
