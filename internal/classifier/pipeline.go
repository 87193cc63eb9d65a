package classifier

import (
	"context"

	"github.com/JartiX/Irk-media-monitoring/internal/domain"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
	"github.com/JartiX/Irk-media-monitoring/internal/ruleset"
)

// Fusion weights for combining the lexical score with the backend
// probability.
const (
	lexicalWeight = 0.4
	backendWeight = 0.6
)

// Pipeline runs the full relevance pass over posts: lexical scoring first,
// then backend fusion for posts that were not hard-rejected.
type Pipeline struct {
	scorer     *KeywordScorer
	backend    Backend
	thresholds ruleset.Thresholds
	logger     logger.Logger
}

// NewPipeline wires the scorer and backend together under the ruleset
// thresholds.
func NewPipeline(scorer *KeywordScorer, backend Backend, rules *ruleset.Ruleset, log logger.Logger) *Pipeline {
	if backend == nil {
		backend = NewUnavailable()
	}
	return &Pipeline{
		scorer:     scorer,
		backend:    backend,
		thresholds: rules.Thresholds,
		logger:     log,
	}
}

// ScorePosts assigns IsRelevant and RelevanceScore to every post in place.
//
// Hard-rejected posts keep their negative score and never reach the
// backend. When the backend is ready, it refines the remaining verdicts:
// agreement with a relevant lexical verdict confirms it; disagreement
// re-decides on the fused score; a high-confidence backend prediction
// promotes a lexically negative post on the backend's probability alone.
// Backend failure leaves lexical verdicts standing.
func (p *Pipeline) ScorePosts(ctx context.Context, posts []*domain.Post) {
	if len(posts) == 0 {
		return
	}

	for _, post := range posts {
		relevant, score := p.scorer.CheckRelevance(post.FullText())
		post.IsRelevant = relevant
		post.RelevanceScore = score
	}

	if !p.backend.Ready() {
		p.logger.Debug("backend not ready, lexical verdicts only",
			logger.Int("posts", len(posts)))
		return
	}

	eligible := make([]int, 0, len(posts))
	texts := make([]string, 0, len(posts))
	for i, post := range posts {
		if post.RelevanceScore >= 0 {
			eligible = append(eligible, i)
			texts = append(texts, post.FullText())
		}
	}
	if len(eligible) == 0 {
		return
	}

	preds, err := p.backend.PredictBatch(ctx, texts)
	if err != nil {
		p.logger.Warn("backend prediction failed, lexical verdicts stand",
			logger.String("backend", p.backend.Name()),
			logger.Error(err))
		return
	}

	for j, i := range eligible {
		p.fuse(posts[i], preds[j])
	}
}

func (p *Pipeline) fuse(post *domain.Post, pred Prediction) {
	combined := lexicalWeight*post.RelevanceScore + backendWeight*pred.Probability

	if post.IsRelevant {
		if !pred.Relevant {
			post.IsRelevant = combined >= p.thresholds.Backend
		}
		post.RelevanceScore = combined
		return
	}

	if pred.Probability >= p.thresholds.BackendOverride {
		post.IsRelevant = true
		post.RelevanceScore = pred.Probability
		return
	}
	post.RelevanceScore = combined
}

// Score runs the pipeline on a single text and returns the final verdict.
func (p *Pipeline) Score(ctx context.Context, text string) (bool, float64) {
	post := &domain.Post{Content: text}
	p.ScorePosts(ctx, []*domain.Post{post})
	return post.IsRelevant, post.RelevanceScore
}
