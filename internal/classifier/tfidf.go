package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/JartiX/Irk-media-monitoring/internal/logger"
)

// vectorizerArtifact mirrors the exported state of a fitted TF-IDF
// vectorizer: vocabulary term -> column index, per-column IDF weights and
// the maximum n-gram length.
type vectorizerArtifact struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	NgramMax   int            `json:"ngram_max"`
}

// modelArtifact mirrors an exported logistic regression: one coefficient
// per vocabulary column plus the intercept.
type modelArtifact struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// TfidfBackend scores text with a logistic regression over TF-IDF features
// loaded from JSON artifacts. Inference is pure Go and needs no external
// service. A backend whose artifacts are missing or inconsistent is not
// ready and predicts zeros.
type TfidfBackend struct {
	vocab     map[string]int
	idf       []float64
	ngramMax  int
	coef      []float64
	intercept float64
	threshold float64
	ready     bool
	logger    logger.Logger
}

// NewTfidfBackend loads the vectorizer and model artifacts. Load failures
// are logged and leave the backend not ready rather than returning an
// error, so the fallback chain can continue.
func NewTfidfBackend(vectorizerPath, modelPath string, threshold float64, log logger.Logger) *TfidfBackend {
	b := &TfidfBackend{threshold: threshold, logger: log}

	if vectorizerPath == "" || modelPath == "" {
		log.Debug("tfidf artifact paths not configured")
		return b
	}

	if err := b.load(vectorizerPath, modelPath); err != nil {
		log.Warn("tfidf model load failed", logger.Error(err))
		return b
	}

	b.ready = true
	log.Info("tfidf model loaded",
		logger.Int("vocabulary_size", len(b.vocab)),
		logger.Int("ngram_max", b.ngramMax))
	return b
}

func (b *TfidfBackend) load(vectorizerPath, modelPath string) error {
	var vec vectorizerArtifact
	if err := readJSON(vectorizerPath, &vec); err != nil {
		return err
	}
	var model modelArtifact
	if err := readJSON(modelPath, &model); err != nil {
		return err
	}

	if len(vec.Vocabulary) == 0 {
		return fmt.Errorf("vectorizer %s: empty vocabulary", vectorizerPath)
	}
	if len(vec.IDF) != len(vec.Vocabulary) {
		return fmt.Errorf("vectorizer %s: %d idf weights for %d terms",
			vectorizerPath, len(vec.IDF), len(vec.Vocabulary))
	}
	if len(model.Coefficients) != len(vec.Vocabulary) {
		return fmt.Errorf("model %s: %d coefficients for %d terms",
			modelPath, len(model.Coefficients), len(vec.Vocabulary))
	}

	b.vocab = vec.Vocabulary
	b.idf = vec.IDF
	b.ngramMax = vec.NgramMax
	if b.ngramMax < 1 {
		b.ngramMax = 1
	}
	b.coef = model.Coefficients
	b.intercept = model.Intercept
	return nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (b *TfidfBackend) Name() string { return "tfidf" }

func (b *TfidfBackend) Ready() bool { return b.ready }

func (b *TfidfBackend) Predict(ctx context.Context, text string) (Prediction, error) {
	if !b.ready || text == "" {
		return Prediction{}, nil
	}

	features := b.vectorize(text)
	z := b.intercept
	for idx, weight := range features {
		z += b.coef[idx] * weight
	}
	p := sigmoid(z)

	return Prediction{Relevant: p >= b.threshold, Probability: p}, nil
}

func (b *TfidfBackend) PredictBatch(ctx context.Context, texts []string) ([]Prediction, error) {
	preds := make([]Prediction, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return preds, err
		}
		pred, err := b.Predict(ctx, text)
		if err != nil {
			return preds, err
		}
		preds[i] = pred
	}
	return preds, nil
}

// vectorize builds the L2-normalized TF-IDF vector of text as a sparse
// column -> weight map.
func (b *TfidfBackend) vectorize(text string) map[int]float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	tf := make(map[int]float64)
	for n := 1; n <= b.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := strings.Join(tokens[i:i+n], " ")
			if idx, ok := b.vocab[term]; ok {
				tf[idx]++
			}
		}
	}
	if len(tf) == 0 {
		return nil
	}

	var norm float64
	for idx := range tf {
		tf[idx] *= b.idf[idx]
		norm += tf[idx] * tf[idx]
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for idx := range tf {
			tf[idx] /= norm
		}
	}
	return tf
}

// tokenize lower-cases text and splits it into runs of letters and digits.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
