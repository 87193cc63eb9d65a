package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JartiX/Irk-media-monitoring/internal/logger"
)

func newBertTestServer(t *testing.T, healthy bool, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(bertHealthResponse{
			Status:       "ok",
			ModelVersion: "v1",
			Device:       "cpu",
		})
	})

	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		var req bertPredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		probs := make([]float64, len(req.Texts))
		for i := range req.Texts {
			probs[i] = 0.8
		}
		json.NewEncoder(w).Encode(bertPredictResponse{Probabilities: probs})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBertBackendPredictBatch(t *testing.T) {
	var requests atomic.Int32
	srv := newBertTestServer(t, true, &requests)

	b := NewBertBackend(context.Background(), srv.URL, 2, 0.5, time.Second, logger.NewNop())
	if !b.Ready() {
		t.Fatal("backend not ready after healthy probe")
	}

	preds, err := b.PredictBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(preds) != 3 {
		t.Fatalf("got %d predictions, want 3", len(preds))
	}
	for i, pred := range preds {
		if !pred.Relevant || pred.Probability != 0.8 {
			t.Errorf("pred[%d] = %+v, want relevant with p=0.8", i, pred)
		}
	}
	// Three texts with batch size two means two chunk requests.
	if got := requests.Load(); got != 2 {
		t.Errorf("predict requests = %d, want 2", got)
	}
}

func TestBertBackendUnhealthyService(t *testing.T) {
	srv := newBertTestServer(t, false, nil)

	b := NewBertBackend(context.Background(), srv.URL, 8, 0.5, time.Second, logger.NewNop())
	if b.Ready() {
		t.Fatal("backend must not be ready after failed health probe")
	}

	preds, err := b.PredictBatch(context.Background(), []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	if preds[0] != (Prediction{}) {
		t.Errorf("prediction = %+v, want zero value", preds[0])
	}
}

func TestBertBackendDegradesOnInferenceError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(bertHealthResponse{Status: "ok"})
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := NewBertBackend(context.Background(), srv.URL, 8, 0.5, time.Second, logger.NewNop())
	if !b.Ready() {
		t.Fatal("backend not ready after healthy probe")
	}

	preds, err := b.PredictBatch(context.Background(), []string{"a", "b"})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("err = %v, want ErrBackendUnavailable", err)
	}
	if preds != nil {
		t.Errorf("predictions = %+v, want nil on inference failure", preds)
	}
	if b.Ready() {
		t.Error("backend must degrade after an inference failure")
	}
}

func TestBertBackendEmptyURL(t *testing.T) {
	b := NewBertBackend(context.Background(), "", 8, 0.5, time.Second, logger.NewNop())
	if b.Ready() {
		t.Fatal("backend must not be ready without a service URL")
	}
}
