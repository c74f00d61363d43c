// Package analysis scores free-text reports against the keyword lexicon and
// decides which responsible entity should receive them.
package analysis

import (
	"fmt"
	"strings"

	"reportes/backend/internal/config"
	"reportes/backend/internal/lexicon"
)

// Result is the outcome of classifying one report.
type Result struct {
	Entity     string `json:"entity"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`

	// Score is the raw weighted score of the winning entity.
	Score int `json:"score"`
	// Matches lists the distinct terms of the winner in lexicon order.
	Matches []string `json:"matches,omitempty"`
}

// EntityScore is the per-entity breakdown produced while scoring.
type EntityScore struct {
	Entity  string
	Score   int
	Matches []string
}

// Classifier is a deterministic lexical scorer. It holds no mutable state and
// is safe for concurrent use.
type Classifier struct {
	entries  []lexicon.Entry
	fallback string
}

// NewClassifier creates a classifier over lex.
func NewClassifier(lex *lexicon.Lexicon) *Classifier {
	return &Classifier{
		entries:  lex.Entries(),
		fallback: lex.Fallback(),
	}
}

// Classify picks the responsible entity for a report title and description.
// It never fails; empty input yields the fallback entity.
func (c *Classifier) Classify(title, description string) Result {
	scores := c.Score(title, description)

	best := -1
	for i, s := range scores {
		if s.Score == 0 {
			continue
		}
		if best == -1 || s.Score > scores[best].Score {
			best = i
		}
	}

	if best == -1 {
		return Result{
			Entity:     c.fallback,
			Confidence: config.FallbackConfidence,
			Reasoning:  noSignalReasoning(c.fallback),
		}
	}

	winner := scores[best]
	return Result{
		Entity:     winner.Entity,
		Confidence: ConfidenceForScore(winner.Score),
		Reasoning:  matchReasoning(winner),
		Score:      winner.Score,
		Matches:    winner.Matches,
	}
}

// Score returns the score of every entity in lexicon order.
func (c *Classifier) Score(title, description string) []EntityScore {
	text := strings.ToLower(title + " " + description)
	titleText := strings.ToLower(title)

	scores := make([]EntityScore, 0, len(c.entries))
	for _, entry := range c.entries {
		es := EntityScore{Entity: entry.Entity}
		for _, term := range entry.Terms {
			hits := CountWholeWord(text, term)
			if hits == 0 {
				continue
			}
			es.Score += hits * config.BaseTermWeight
			es.Score += CountWholeWord(titleText, term) * config.TitleTermBonus
			es.Matches = append(es.Matches, term)
		}
		scores = append(scores, es)
	}
	return scores
}

// ConfidenceForScore maps a raw score to its confidence band.
func ConfidenceForScore(score int) int {
	for _, band := range config.ConfidenceBands {
		if score >= band.MinScore {
			return band.Confidence
		}
	}
	return config.FallbackConfidence
}

func matchReasoning(s EntityScore) string {
	shown := s.Matches
	if len(shown) > config.MaxReasonTerms {
		shown = shown[:config.MaxReasonTerms]
	}

	quoted := make([]string, len(shown))
	for i, m := range shown {
		quoted[i] = fmt.Sprintf("%q", m)
	}

	reason := fmt.Sprintf("Términos detectados para %s: %s", s.Entity, strings.Join(quoted, ", "))
	if rest := len(s.Matches) - len(shown); rest > 0 {
		reason += fmt.Sprintf(" (+%d más)", rest)
	}
	return reason
}

func noSignalReasoning(fallback string) string {
	return fmt.Sprintf("No se encontraron términos distintivos; se asigna a %s", fallback)
}
