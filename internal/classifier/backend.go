package classifier

import (
	"context"
	"errors"
	"time"

	"github.com/JartiX/Irk-media-monitoring/internal/logger"
	"github.com/JartiX/Irk-media-monitoring/internal/ruleset"
)

// ErrBackendUnavailable is returned by backend constructors and transports
// when the underlying model or service cannot serve predictions.
var ErrBackendUnavailable = errors.New("classifier backend unavailable")

// Prediction is a single backend verdict.
type Prediction struct {
	// Relevant is the backend's own verdict at its probability threshold.
	Relevant bool
	// Probability is the model's relevance probability in [0, 1].
	Probability float64
}

// Backend produces ML relevance predictions for text. Implementations must
// be safe for concurrent use. A backend that is not ready returns zero
// predictions with no error; a failure during inference returns an error
// and degrades the backend so later calls report Ready() == false.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Ready reports whether the backend can currently serve predictions.
	Ready() bool
	// Predict scores a single text.
	Predict(ctx context.Context, text string) (Prediction, error)
	// PredictBatch scores texts in order; the result has the same length
	// as the input.
	PredictBatch(ctx context.Context, texts []string) ([]Prediction, error)
}

// BackendConfig selects and parameterizes the ML backend. The probability
// cutoff for the backend's own verdict is the ruleset's backend threshold,
// the same value fusion decides against.
type BackendConfig struct {
	// Type is one of "bert", "tfidf" or "none".
	Type string `env:"ML_BACKEND" yaml:"type"`

	TfidfVectorizerPath string `env:"TFIDF_VECTORIZER_PATH" yaml:"tfidf_vectorizer_path"`
	TfidfModelPath      string `env:"TFIDF_MODEL_PATH" yaml:"tfidf_model_path"`

	BertURL       string        `env:"BERT_SERVICE_URL" yaml:"bert_url"`
	BertBatchSize int           `yaml:"bert_batch_size"`
	BertTimeout   time.Duration `yaml:"bert_timeout"`
}

// NewBackend builds the configured backend, falling back down the chain
// when a candidate is not ready: bert degrades to tfidf, tfidf degrades to
// the unavailable stub. Construction never fails; the worst case is a stub
// that leaves lexical verdicts untouched.
func NewBackend(ctx context.Context, cfg BackendConfig, rules *ruleset.Ruleset, log logger.Logger) Backend {
	threshold := rules.Thresholds.Backend
	var candidates []Backend

	switch cfg.Type {
	case "bert":
		candidates = append(candidates,
			NewBertBackend(ctx, cfg.BertURL, cfg.BertBatchSize, threshold, cfg.BertTimeout, log),
			NewTfidfBackend(cfg.TfidfVectorizerPath, cfg.TfidfModelPath, threshold, log),
		)
	case "tfidf":
		candidates = append(candidates,
			NewTfidfBackend(cfg.TfidfVectorizerPath, cfg.TfidfModelPath, threshold, log),
		)
	}

	for _, b := range candidates {
		if b.Ready() {
			log.Info("classifier backend ready", logger.String("backend", b.Name()))
			return b
		}
		log.Warn("classifier backend not ready, falling back",
			logger.String("backend", b.Name()))
	}

	log.Info("no ML backend available, lexical scoring only")
	return NewUnavailable()
}

// Unavailable is the stub backend used when no model can be loaded. It is
// never ready and predicts nothing.
type Unavailable struct{}

// NewUnavailable returns the stub backend.
func NewUnavailable() *Unavailable { return &Unavailable{} }

func (u *Unavailable) Name() string { return "none" }

func (u *Unavailable) Ready() bool { return false }

func (u *Unavailable) Predict(ctx context.Context, text string) (Prediction, error) {
	return Prediction{}, nil
}

func (u *Unavailable) PredictBatch(ctx context.Context, texts []string) ([]Prediction, error) {
	return make([]Prediction, len(texts)), nil
}
