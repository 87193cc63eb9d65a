package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/JartiX/Irk-media-monitoring/internal/domain"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
)

const defaultGatewayTimeout = 30 * time.Second

// GatewayConfig configures one source behind the extraction gateway.
type GatewayConfig struct {
	// Name is the human-readable source name.
	Name string `yaml:"name"`
	// Type is the source kind: news, social or messaging.
	Type domain.SourceType `yaml:"type"`
	// FeedURL is the monitored origin, also the source identity key.
	FeedURL string `yaml:"feed_url"`
	// GatewayURL is the extraction gateway base URL.
	GatewayURL string `yaml:"gateway_url"`
	// Token is the gateway bearer token.
	Token string `env:"GATEWAY_TOKEN" yaml:"token"`
	// SkipRelevanceCheck marks a curated source whose posts are relevant
	// by definition.
	SkipRelevanceCheck bool `yaml:"skip_relevance_check"`
	// Timeout bounds a single gateway request.
	Timeout time.Duration `yaml:"timeout"`
}

// gatewayItem is one pre-extracted post record.
type gatewayItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Likes       int    `json:"likes"`
	Views       int    `json:"views"`
	Comments    int    `json:"comments"`
}

type gatewayItemsResponse struct {
	Items []gatewayItem `json:"items"`
}

// gatewayComment is one pre-extracted comment record.
type gatewayComment struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Author      string `json:"author"`
	PublishedAt string `json:"published_at"`
	Likes       int    `json:"likes"`
}

type gatewayCommentsResponse struct {
	Comments []gatewayComment `json:"comments"`
}

// Gateway fetches pre-extracted posts and comments for one source from the
// extraction gateway.
type Gateway struct {
	cfg    GatewayConfig
	client *http.Client
	logger logger.Logger
}

// NewGateway builds a gateway fetcher for one configured source.
func NewGateway(cfg GatewayConfig, log logger.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: log.With(logger.String("source", cfg.Name)),
	}
}

func (g *Gateway) Name() string { return g.cfg.Name }

func (g *Gateway) Source() domain.Source {
	return domain.Source{
		Name:     g.cfg.Name,
		Type:     g.cfg.Type,
		URL:      g.cfg.FeedURL,
		IsActive: true,
	}
}

func (g *Gateway) SkipRelevanceCheck() bool { return g.cfg.SkipRelevanceCheck }

// FetchPosts retrieves up to limit recent posts. Malformed records are
// skipped with a warning; one bad record never fails the batch.
func (g *Gateway) FetchPosts(ctx context.Context, limit int) ([]*domain.Post, error) {
	q := url.Values{}
	q.Set("feed", g.cfg.FeedURL)
	q.Set("limit", strconv.Itoa(limit))

	var out gatewayItemsResponse
	if err := g.get(ctx, "/v1/items", q, &out); err != nil {
		return nil, fmt.Errorf("fetch posts for %s: %w", g.cfg.Name, err)
	}

	posts := make([]*domain.Post, 0, len(out.Items))
	for _, item := range out.Items {
		if item.ID == "" || (item.Title == "" && item.Content == "") {
			g.logger.Warn("skipping malformed gateway item", logger.String("item_id", item.ID))
			continue
		}
		posts = append(posts, &domain.Post{
			ExternalID:    item.ID,
			Title:         item.Title,
			Content:       item.Content,
			URL:           item.URL,
			PublishedAt:   parseGatewayTime(item.PublishedAt),
			LikesCount:    item.Likes,
			ViewsCount:    item.Views,
			CommentsCount: item.Comments,
		})
	}

	g.logger.Debug("posts fetched",
		logger.Int("received", len(out.Items)),
		logger.Int("accepted", len(posts)))
	return posts, nil
}

// FetchComments retrieves up to limit comments for a post.
func (g *Gateway) FetchComments(ctx context.Context, externalID string, limit int) ([]*domain.Comment, error) {
	q := url.Values{}
	q.Set("feed", g.cfg.FeedURL)
	q.Set("item", externalID)
	q.Set("limit", strconv.Itoa(limit))

	var out gatewayCommentsResponse
	if err := g.get(ctx, "/v1/comments", q, &out); err != nil {
		return nil, fmt.Errorf("fetch comments for %s/%s: %w", g.cfg.Name, externalID, err)
	}

	comments := make([]*domain.Comment, 0, len(out.Comments))
	for _, c := range out.Comments {
		if c.ID == "" || c.Text == "" {
			g.logger.Warn("skipping malformed gateway comment",
				logger.String("comment_id", c.ID),
				logger.String("item_id", externalID))
			continue
		}
		comments = append(comments, &domain.Comment{
			ExternalID:  c.ID,
			Content:     c.Text,
			Author:      c.Author,
			PublishedAt: parseGatewayTime(c.PublishedAt),
			LikesCount:  c.Likes,
		})
	}
	return comments, nil
}

func (g *Gateway) get(ctx context.Context, path string, query url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.cfg.GatewayURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if g.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

// parseGatewayTime accepts RFC 3339 timestamps; anything else becomes nil
// rather than failing the record.
func parseGatewayTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &ts
}
