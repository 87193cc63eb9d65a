package classifier

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JartiX/Irk-media-monitoring/internal/domain"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
	"github.com/JartiX/Irk-media-monitoring/internal/ruleset"
)

// stubBackend returns canned predictions keyed by text.
type stubBackend struct {
	ready    bool
	preds    map[string]Prediction
	gotTexts []string
}

func (s *stubBackend) Name() string { return "stub" }
func (s *stubBackend) Ready() bool  { return s.ready }

func (s *stubBackend) Predict(ctx context.Context, text string) (Prediction, error) {
	preds, err := s.PredictBatch(ctx, []string{text})
	if err != nil {
		return Prediction{}, err
	}
	return preds[0], nil
}

func (s *stubBackend) PredictBatch(ctx context.Context, texts []string) ([]Prediction, error) {
	s.gotTexts = append(s.gotTexts, texts...)
	preds := make([]Prediction, len(texts))
	for i, text := range texts {
		preds[i] = s.preds[text]
	}
	return preds, nil
}

func newTestPipeline(t *testing.T, backend Backend) *Pipeline {
	t.Helper()
	rules := ruleset.Default()
	scorer := NewKeywordScorer(rules, logger.NewNop())
	return NewPipeline(scorer, backend, rules, logger.NewNop())
}

func TestScorePostsLexicalOnlyWhenBackendNotReady(t *testing.T) {
	backend := &stubBackend{ready: false}
	pipeline := newTestPipeline(t, backend)

	post := &domain.Post{Content: "Экскурсия на остров с видом на озеро, гид, маршрут"}
	pipeline.ScorePosts(context.Background(), []*domain.Post{post})

	if !post.IsRelevant {
		t.Error("expected lexical relevant verdict")
	}
	if math.Abs(post.RelevanceScore-0.7) > scoreEpsilon {
		t.Errorf("score = %v, want 0.7", post.RelevanceScore)
	}
	if len(backend.gotTexts) != 0 {
		t.Errorf("backend received %d texts while not ready", len(backend.gotTexts))
	}
}

func TestScorePostsHardRejectSkipsBackend(t *testing.T) {
	text := "Лучшее казино ждет вас"
	backend := &stubBackend{
		ready: true,
		preds: map[string]Prediction{text: {Relevant: true, Probability: 0.99}},
	}
	pipeline := newTestPipeline(t, backend)

	post := &domain.Post{Content: text}
	pipeline.ScorePosts(context.Background(), []*domain.Post{post})

	if post.IsRelevant {
		t.Error("hard-rejected post must stay not relevant")
	}
	if post.RelevanceScore != domain.HardRejectScore {
		t.Errorf("score = %v, want %v", post.RelevanceScore, domain.HardRejectScore)
	}
	if len(backend.gotTexts) != 0 {
		t.Errorf("backend received %d hard-rejected texts", len(backend.gotTexts))
	}
}

func TestScorePostsFusion(t *testing.T) {
	relevantText := "Экскурсия на остров с видом на озеро, гид, маршрут" // lexical 0.7, relevant
	weakText := "Отдых на Байкале"                                      // lexical 0.1, not relevant

	tests := []struct {
		name         string
		text         string
		pred         Prediction
		wantRelevant bool
		wantScore    float64
	}{
		{
			name:         "backend confirms relevant verdict",
			text:         relevantText,
			pred:         Prediction{Relevant: true, Probability: 0.9},
			wantRelevant: true,
			wantScore:    0.4*0.7 + 0.6*0.9,
		},
		{
			name:         "backend disagreement demotes on fused score",
			text:         relevantText,
			pred:         Prediction{Relevant: false, Probability: 0.2},
			wantRelevant: false,
			wantScore:    0.4*0.7 + 0.6*0.2,
		},
		{
			name:         "high confidence backend promotes weak post",
			text:         weakText,
			pred:         Prediction{Relevant: true, Probability: 0.9},
			wantRelevant: true,
			wantScore:    0.9,
		},
		{
			name:         "low confidence backend leaves weak post demoted",
			text:         weakText,
			pred:         Prediction{Relevant: false, Probability: 0.4},
			wantRelevant: false,
			wantScore:    0.4*0.1 + 0.6*0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &stubBackend{
				ready: true,
				preds: map[string]Prediction{tt.text: tt.pred},
			}
			pipeline := newTestPipeline(t, backend)

			post := &domain.Post{Content: tt.text}
			pipeline.ScorePosts(context.Background(), []*domain.Post{post})

			if post.IsRelevant != tt.wantRelevant {
				t.Errorf("relevant = %v, want %v", post.IsRelevant, tt.wantRelevant)
			}
			if math.Abs(post.RelevanceScore-tt.wantScore) > scoreEpsilon {
				t.Errorf("score = %v, want %v", post.RelevanceScore, tt.wantScore)
			}
		})
	}
}

func TestScorePostsKeepsLexicalVerdictOnBackendFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(bertHealthResponse{Status: "ok"})
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	backend := NewBertBackend(context.Background(), srv.URL, 8, 0.5, time.Second, logger.NewNop())
	pipeline := newTestPipeline(t, backend)

	post := &domain.Post{Content: "Экскурсия на остров с видом на озеро, гид, маршрут"}
	pipeline.ScorePosts(context.Background(), []*domain.Post{post})

	if !post.IsRelevant {
		t.Error("lexical relevant verdict must survive a backend failure")
	}
	if math.Abs(post.RelevanceScore-0.7) > scoreEpsilon {
		t.Errorf("score = %v, want lexical 0.7", post.RelevanceScore)
	}
	if backend.Ready() {
		t.Error("backend must degrade after the failed call")
	}
}

func TestScorePostsNilBackend(t *testing.T) {
	pipeline := newTestPipeline(t, nil)

	relevant, score := pipeline.Score(context.Background(), "Гид и маршрут по Байкалу")
	if !relevant {
		t.Error("expected relevant verdict with lexical scoring only")
	}
	if score <= 0 {
		t.Errorf("score = %v, want positive", score)
	}
}
