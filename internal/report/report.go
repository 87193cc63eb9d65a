// Package report turns run statistics into human-readable summaries and
// delivers them to notifiers.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JartiX/Irk-media-monitoring/internal/logger"
	"github.com/JartiX/Irk-media-monitoring/internal/monitor"
)

// Notifier delivers a run summary somewhere useful.
type Notifier interface {
	Notify(ctx context.Context, summary string) error
}

// Format renders stats as a multi-line summary.
func Format(stats monitor.RunStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Monitoring run %s (%s)\n",
		stats.StartedAt.Format("2006-01-02 15:04:05"),
		stats.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "Sources: %d ok, %d failed\n", stats.Sources, stats.SourceErrors)
	fmt.Fprintf(&b, "Posts: %d processed (%d new, %d updated), %d relevant\n",
		stats.PostsProcessed, stats.PostsNew, stats.PostsUpdated, stats.PostsRelevant)
	fmt.Fprintf(&b, "Comments: %d processed (%d new, %d updated), %d relevant, %d useful\n",
		stats.CommentsProcessed, stats.CommentsNew, stats.CommentsUpdated,
		stats.CommentsRelevant, stats.CommentsUseful)
	fmt.Fprintf(&b, "Errors: %d", stats.Errors)

	return b.String()
}

// Dispatch formats stats and sends the summary to every notifier. Delivery
// failures are logged, never returned; reporting must not fail a run.
func Dispatch(ctx context.Context, stats monitor.RunStats, notifiers []Notifier, log logger.Logger) {
	summary := Format(stats)
	for _, n := range notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			log.Warn("run summary delivery failed", logger.Error(err))
		}
	}
}

// LogNotifier writes the summary to the service log.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier returns a notifier backed by log.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) Notify(ctx context.Context, summary string) error {
	n.logger.Info("run summary", logger.String("summary", summary))
	return nil
}

// WebhookNotifier posts the summary as JSON to an HTTP endpoint, typically
// a chat-bot bridge.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier returns a notifier posting to url.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, summary string) error {
	body, err := json.Marshal(map[string]string{"text": summary})
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
