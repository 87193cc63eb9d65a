// Package ruleset holds the immutable keyword configuration that drives
// lexical scoring. A Ruleset is built once at startup and passed into
// constructors; nothing in this package reads global state.
package ruleset

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds groups the numeric cutoffs used by scoring and fusion.
type Thresholds struct {
	// Relevance is the minimum lexical score for a relevant verdict.
	Relevance float64 `yaml:"relevance"`
	// Backend is the probability cutoff for the ML backend's own verdict
	// and for the fused score.
	Backend float64 `yaml:"backend"`
	// BackendOverride is the high-confidence cutoff at which the backend
	// alone may promote a lexically negative post.
	BackendOverride float64 `yaml:"backend_override"`
	// MinCommentLength is the minimum comment length considered for the
	// tourism and usefulness predicates.
	MinCommentLength int `yaml:"min_comment_length"`
}

// Ruleset is the full weighted keyword configuration. Matching is
// substring-based on lower-cased text, so entries are stems rather than
// full word forms.
type Ruleset struct {
	// HighImpact are strong tourism signals; any match makes the base score.
	HighImpact []string `yaml:"high_impact"`
	// LowImpact are weak tourism signals contributing a capped bonus.
	LowImpact []string `yaml:"low_impact"`
	// Geo are regional place names contributing a capped bonus.
	Geo []string `yaml:"geo"`
	// Negative are off-topic signals; each match penalizes the score, and
	// with no high-impact match present they reject the text outright.
	Negative []string `yaml:"negative"`
	// Ban are instant hard-reject terms, checked before everything else.
	Ban []string `yaml:"ban"`
	// Political are political-content markers.
	Political []string `yaml:"political"`
	// Whitelist entries suppress a political verdict when present.
	Whitelist []string `yaml:"whitelist"`
	// Profanity are obscene-language stems.
	Profanity []string `yaml:"profanity"`
	// UsefulCues mark comments carrying practical information.
	UsefulCues []string `yaml:"useful_cues"`
	// UselessCues mark throwaway or promotional comments.
	UselessCues []string `yaml:"useless_cues"`

	Thresholds Thresholds `yaml:"thresholds"`
}

// Load reads a ruleset YAML file. Fields absent from the file keep their
// default values, so a file may override a single category or threshold.
func Load(path string) (*Ruleset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset %s: %w", path, err)
	}

	rs := Default()
	if err := yaml.Unmarshal(raw, rs); err != nil {
		return nil, fmt.Errorf("parse ruleset %s: %w", path, err)
	}

	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}

	return rs, nil
}

// Validate checks that the categories required for scoring are present and
// the thresholds are sane.
func (r *Ruleset) Validate() error {
	if len(r.HighImpact) == 0 {
		return errors.New("high_impact category is empty")
	}
	if r.Thresholds.Relevance <= 0 || r.Thresholds.Relevance >= 1 {
		return fmt.Errorf("relevance threshold %.2f out of (0,1)", r.Thresholds.Relevance)
	}
	if r.Thresholds.Backend <= 0 || r.Thresholds.Backend >= 1 {
		return fmt.Errorf("backend threshold %.2f out of (0,1)", r.Thresholds.Backend)
	}
	if r.Thresholds.BackendOverride < r.Thresholds.Backend {
		return fmt.Errorf("backend_override %.2f below backend threshold %.2f",
			r.Thresholds.BackendOverride, r.Thresholds.Backend)
	}
	if r.Thresholds.MinCommentLength < 0 {
		return fmt.Errorf("min_comment_length %d is negative", r.Thresholds.MinCommentLength)
	}
	return nil
}
