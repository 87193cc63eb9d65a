// Package domain holds the core entities shared across the monitoring pipeline.
package domain

import "time"

// SourceType identifies the kind of origin a source represents.
type SourceType string

const (
	// SourceTypeNews is a news site behind an extraction gateway.
	SourceTypeNews SourceType = "news"
	// SourceTypeSocial is a social network community feed.
	SourceTypeSocial SourceType = "social"
	// SourceTypeMessaging is a public messaging channel.
	SourceTypeMessaging SourceType = "messaging"
)

// HardRejectScore is the sentinel relevance score for posts rejected by the
// ban-list, negative, or political short-circuits. It is never blended with
// backend probabilities and never surfaced as a positive score.
const HardRejectScore = -1.0

// Source is a monitored origin. Identity key is URL: one row per distinct
// origin, created on first encounter and never deleted by this service.
type Source struct {
	ID        string     `db:"id"         json:"id"`
	Name      string     `db:"name"       json:"name"`
	Type      SourceType `db:"type"       json:"type"`
	URL       string     `db:"url"        json:"url"`
	IsActive  bool       `db:"is_active"  json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Post is a single news item or social post. Dedup key is
// (SourceID, ExternalID); re-ingestion updates mutable fields but preserves
// ID and CreatedAt.
type Post struct {
	ID             string     `db:"id"              json:"id"`
	SourceID       string     `db:"source_id"       json:"source_id"`
	ExternalID     string     `db:"external_id"     json:"external_id"`
	Title          string     `db:"title"           json:"title,omitempty"`
	Content        string     `db:"content"         json:"content"`
	URL            string     `db:"url"             json:"url"`
	PublishedAt    *time.Time `db:"published_at"    json:"published_at,omitempty"`
	LikesCount     int        `db:"likes_count"     json:"likes_count"`
	ViewsCount     int        `db:"views_count"     json:"views_count"`
	CommentsCount  int        `db:"comments_count"  json:"comments_count"`
	RelevanceScore float64    `db:"relevance_score" json:"relevance_score"`
	IsRelevant     bool       `db:"is_relevant"     json:"is_relevant"`
	CreatedAt      time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"      json:"updated_at"`
}

// FullText returns title and content joined for scoring.
func (p *Post) FullText() string {
	if p.Title == "" {
		return p.Content
	}
	return p.Title + " " + p.Content
}

// Comment is a reader comment attached to a post. Dedup key is
// (PostID, ExternalID). The four flags are independent booleans; IsClean is
// derived as ¬IsPolitical ∧ ¬IsProfane and is never set on its own.
type Comment struct {
	ID          string     `db:"id"           json:"id"`
	PostID      string     `db:"post_id"      json:"post_id"`
	ExternalID  string     `db:"external_id"  json:"external_id"`
	Content     string     `db:"content"      json:"content"`
	Author      string     `db:"author"       json:"author,omitempty"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	LikesCount  int        `db:"likes_count"  json:"likes_count"`
	IsClean     bool       `db:"is_clean"     json:"is_clean"`
	IsRelevant  bool       `db:"is_relevant"  json:"is_relevant"`
	IsPolitical bool       `db:"is_political" json:"is_political"`
	IsProfane   bool       `db:"is_profane"   json:"is_profane"`
	CreatedAt   time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"   json:"updated_at"`
}

// StoreStats is the aggregate view over everything persisted so far.
type StoreStats struct {
	SourcesCount       int `db:"sources_count"        json:"sources_count"`
	PostsCount         int `db:"posts_count"          json:"posts_count"`
	RelevantPostsCount int `db:"relevant_posts_count" json:"relevant_posts_count"`
	CommentsCount      int `db:"comments_count"       json:"comments_count"`
	CleanCommentsCount int `db:"clean_comments_count" json:"clean_comments_count"`
	PoliticalComments  int `db:"political_comments"   json:"political_comments"`
	ProfaneComments    int `db:"profane_comments"     json:"profane_comments"`
	RelevantComments   int `db:"relevant_comments"    json:"relevant_comments"`
}
