package classifier

import (
	"github.com/JartiX/Irk-media-monitoring/internal/domain"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
)

// FlagCounts summarizes one flagging pass over a batch of comments.
type FlagCounts struct {
	Total     int
	Clean     int
	Relevant  int
	Political int
	Profane   int
	Useful    int
}

// CommentFlagger assigns moderation flags to comments using the lexical
// scorer's predicates.
type CommentFlagger struct {
	scorer *KeywordScorer
	logger logger.Logger
}

// NewCommentFlagger returns a flagger over the given scorer.
func NewCommentFlagger(scorer *KeywordScorer, log logger.Logger) *CommentFlagger {
	return &CommentFlagger{scorer: scorer, logger: log}
}

// Flag sets the four independent flags on every comment in place and
// returns batch counts. A comment is clean when it is neither political nor
// profane; relevance and cleanliness are orthogonal, so an obscene comment
// about a tourist spot stays relevant. Usefulness is counted but not
// stored.
func (f *CommentFlagger) Flag(comments []*domain.Comment) FlagCounts {
	counts := FlagCounts{Total: len(comments)}

	for _, c := range comments {
		c.IsPolitical = f.scorer.IsPolitical(c.Content)
		c.IsProfane = f.scorer.IsProfane(c.Content)
		c.IsClean = !c.IsPolitical && !c.IsProfane
		c.IsRelevant = f.scorer.IsTourismRelated(c.Content)

		if c.IsClean {
			counts.Clean++
		}
		if c.IsRelevant {
			counts.Relevant++
		}
		if c.IsPolitical {
			counts.Political++
		}
		if c.IsProfane {
			counts.Profane++
		}
		if f.scorer.IsUsefulComment(c.Content) {
			counts.Useful++
		}
	}

	if counts.Total > 0 {
		f.logger.Debug("comments flagged",
			logger.Int("total", counts.Total),
			logger.Int("clean", counts.Clean),
			logger.Int("relevant", counts.Relevant),
			logger.Int("useful", counts.Useful))
	}
	return counts
}
