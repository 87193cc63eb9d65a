package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/JartiX/Irk-media-monitoring/internal/logger"
)

const (
	defaultBertBatchSize = 32
	defaultBertTimeout   = 30 * time.Second
	bertHealthTimeout    = 5 * time.Second
)

// BertBackend delegates predictions to a BERT inference sidecar over HTTP.
// On a transport or server error the backend marks itself not ready and
// returns the error, so the caller keeps its lexical verdicts and later
// batches skip the dead sidecar.
type BertBackend struct {
	baseURL   string
	batchSize int
	threshold float64
	client    *http.Client
	ready     atomic.Bool
	logger    logger.Logger
}

type bertHealthResponse struct {
	Status       string `json:"status"`
	ModelVersion string `json:"model_version"`
	Device       string `json:"device"`
}

type bertPredictRequest struct {
	Texts []string `json:"texts"`
}

type bertPredictResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

// NewBertBackend probes the sidecar's health endpoint and returns the
// backend. A failed probe leaves it not ready; it never returns an error.
func NewBertBackend(ctx context.Context, baseURL string, batchSize int, threshold float64, timeout time.Duration, log logger.Logger) *BertBackend {
	if batchSize <= 0 {
		batchSize = defaultBertBatchSize
	}
	if timeout <= 0 {
		timeout = defaultBertTimeout
	}

	b := &BertBackend{
		baseURL:   baseURL,
		batchSize: batchSize,
		threshold: threshold,
		client:    &http.Client{Timeout: timeout},
		logger:    log,
	}

	if baseURL == "" {
		log.Debug("bert service URL not configured")
		return b
	}

	health, err := b.checkHealth(ctx)
	if err != nil {
		log.Warn("bert service health check failed", logger.Error(err))
		return b
	}

	b.ready.Store(true)
	log.Info("bert service ready",
		logger.String("model_version", health.ModelVersion),
		logger.String("device", health.Device))
	return b
}

func (b *BertBackend) checkHealth(ctx context.Context) (*bertHealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, bertHealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("build health request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health status %d: %w", resp.StatusCode, ErrBackendUnavailable)
	}

	var health bertHealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	if health.Status != "ok" {
		return nil, fmt.Errorf("health status %q: %w", health.Status, ErrBackendUnavailable)
	}
	return &health, nil
}

func (b *BertBackend) Name() string { return "bert" }

func (b *BertBackend) Ready() bool { return b.ready.Load() }

func (b *BertBackend) Predict(ctx context.Context, text string) (Prediction, error) {
	preds, err := b.PredictBatch(ctx, []string{text})
	if err != nil {
		return Prediction{}, err
	}
	return preds[0], nil
}

// PredictBatch scores texts in chunks of the configured batch size. Any
// inference failure degrades the backend and returns an error, so the
// caller falls back to its lexical verdicts instead of fusing zeros.
func (b *BertBackend) PredictBatch(ctx context.Context, texts []string) ([]Prediction, error) {
	preds := make([]Prediction, len(texts))
	if !b.ready.Load() || len(texts) == 0 {
		return preds, nil
	}

	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		probs, err := b.predictChunk(ctx, texts[start:end])
		if err != nil {
			b.ready.Store(false)
			b.logger.Warn("bert inference failed, backend degraded", logger.Error(err))
			return nil, fmt.Errorf("bert inference: %w", err)
		}

		for i, p := range probs {
			preds[start+i] = Prediction{Relevant: p >= b.threshold, Probability: p}
		}
	}
	return preds, nil
}

func (b *BertBackend) predictChunk(ctx context.Context, texts []string) ([]float64, error) {
	body, err := json.Marshal(bertPredictRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("predict status %d: %w", resp.StatusCode, ErrBackendUnavailable)
	}

	var out bertPredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}
	if len(out.Probabilities) != len(texts) {
		return nil, fmt.Errorf("predict returned %d probabilities for %d texts",
			len(out.Probabilities), len(texts))
	}
	return out.Probabilities, nil
}
