// Package classifier implements relevance scoring for monitored posts and
// comments. Lexical scoring over weighted keyword categories runs first; an
// optional ML backend refines lexical verdicts through score fusion.
package classifier

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/JartiX/Irk-media-monitoring/internal/domain"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
	"github.com/JartiX/Irk-media-monitoring/internal/ruleset"
)

const (
	hardRejectScore = domain.HardRejectScore

	baseScore     = 0.3
	perMatchBonus = 0.2
	negativeHit   = 0.3
	bonusPerMatch = 0.05
	bonusCap      = 0.3
)

// KeywordScorer scores text against the weighted keyword categories of a
// Ruleset. It is immutable after construction and safe for concurrent use.
type KeywordScorer struct {
	rules *ruleset.Ruleset

	highImpact *matcher
	lowImpact  *matcher
	geo        *matcher
	negative   *matcher
	ban        *matcher
	political  *matcher
	whitelist  *matcher
	profanity  *matcher
	useful     *matcher
	useless    *matcher

	logger logger.Logger
}

// NewKeywordScorer compiles the ruleset categories into matchers.
func NewKeywordScorer(rules *ruleset.Ruleset, log logger.Logger) *KeywordScorer {
	return &KeywordScorer{
		rules:      rules,
		highImpact: newMatcher(rules.HighImpact),
		lowImpact:  newMatcher(rules.LowImpact),
		geo:        newMatcher(rules.Geo),
		negative:   newMatcher(rules.Negative),
		ban:        newMatcher(rules.Ban),
		political:  newMatcher(rules.Political),
		whitelist:  newMatcher(rules.Whitelist),
		profanity:  newMatcher(rules.Profanity),
		useful:     newMatcher(rules.UsefulCues),
		useless:    newMatcher(rules.UselessCues),
		logger:     log,
	}
}

// CheckRelevance computes the lexical relevance verdict and score for text.
//
// Hard rejects return a negative score so that downstream stages can tell
// them apart from a plain low score: a banned term, a negative match without
// any high-impact match, or political content outside the whitelist. With no
// high-impact match the text is not relevant and carries only the geo and
// low-impact bonuses. Otherwise the score is the high-impact base minus the
// negative penalty plus bonuses, clamped to [0, 1].
func (s *KeywordScorer) CheckRelevance(text string) (bool, float64) {
	if text == "" {
		return false, 0
	}

	t := strings.ToLower(text)

	if s.ban.matched(t) {
		s.logger.Debug("banned term, hard reject")
		return false, hardRejectScore
	}

	positives := s.highImpact.count(t)
	negatives := s.negative.count(t)

	if negatives > 0 && positives == 0 {
		return false, hardRejectScore
	}
	if s.IsPolitical(t) {
		return false, hardRejectScore
	}

	geoBonus := math.Min(bonusPerMatch*float64(s.geo.count(t)), bonusCap)
	lowBonus := math.Min(bonusPerMatch*float64(s.lowImpact.count(t)), bonusCap)

	if positives == 0 {
		return false, clamp01(geoBonus + lowBonus)
	}

	base := math.Min(baseScore+perMatchBonus*float64(positives-1), 1.0)
	score := clamp01(base - negativeHit*float64(negatives) + geoBonus + lowBonus)

	return score >= s.rules.Thresholds.Relevance, score
}

// IsPolitical reports whether text carries political markers. A whitelist
// match suppresses the verdict so that official tourism bodies are not
// flagged.
func (s *KeywordScorer) IsPolitical(text string) bool {
	if text == "" {
		return false
	}
	t := strings.ToLower(text)
	if s.whitelist.matched(t) {
		return false
	}
	return s.political.matched(t)
}

// IsProfane reports whether text contains obscene language.
func (s *KeywordScorer) IsProfane(text string) bool {
	if text == "" {
		return false
	}
	return s.profanity.matched(strings.ToLower(text))
}

// IsTourismRelated reports whether a comment mentions tourism or regional
// geography. Comments shorter than the configured minimum are not related.
func (s *KeywordScorer) IsTourismRelated(text string) bool {
	if utf8.RuneCountInString(text) < s.rules.Thresholds.MinCommentLength {
		return false
	}
	t := strings.ToLower(text)
	return s.highImpact.matched(t) || s.geo.matched(t)
}

// IsUsefulComment reports whether a comment carries practical tourism
// information: a useful cue or a strong tourism signal, with no throwaway
// cue and no negative match.
func (s *KeywordScorer) IsUsefulComment(text string) bool {
	if utf8.RuneCountInString(text) < s.rules.Thresholds.MinCommentLength {
		return false
	}
	t := strings.ToLower(text)
	if s.useless.matched(t) || s.negative.matched(t) {
		return false
	}
	return s.useful.matched(t) || s.highImpact.matched(t)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
