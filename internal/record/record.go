// internal/record/record.go
// Package record holds the typed result of parsing one experiment log.
package record

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch reports an example whose token-aligned fields disagree in length.
var ErrLengthMismatch = errors.New("token count mismatch")

// RunRecord is one parsed experiment output.
type RunRecord struct {
	Name             string             `json:"name"`
	Accuracy         *float64           `json:"accuracy,omitempty"`
	Parameters       map[string]float64 `json:"parameters,omitempty"`
	CorpusReference  string             `json:"corpus_reference,omitempty"`
	Args             map[string]string  `json:"args,omitempty"`
	EmissionInterval *float64           `json:"emission_interval,omitempty"`
	ScoreTrace       []float64          `json:"score_trace,omitempty"`
	Examples         []ExampleRecord    `json:"examples"`
	Warnings         []string           `json:"warnings,omitempty"`
}

// ExampleRecord is one test instance inside a run.
type ExampleRecord struct {
	Key            string               `json:"key,omitempty"`
	Truth          string               `json:"truth"`
	Predicted      string               `json:"predicted"`
	Distance       float64              `json:"distance"`
	ElapsedTime    *float64             `json:"elapsed_time,omitempty"`
	Response       *float64             `json:"response,omitempty"`
	TokenResponses []float64            `json:"token_responses,omitempty"`
	Features       map[string]float64   `json:"features,omitempty"`
	TokenFeatures  []map[string]float64 `json:"token_features,omitempty"`
	Mask           []int                `json:"mask,omitempty"`
}

// HasAccuracy reports whether the accuracy leaf was seen.
func (r *RunRecord) HasAccuracy() bool {
	return r != nil && r.Accuracy != nil
}

// HasMask reports whether a mask was recorded for the example.
func (e ExampleRecord) HasMask() bool {
	return e.Mask != nil
}

// TokenCount returns the number of truth tokens.
func (e ExampleRecord) TokenCount() int {
	return TokenCount(e.Truth)
}

// Validate checks that every token-aligned field has the truth's length.
func (e ExampleRecord) Validate() error {
	truth, err := SplitTokens(e.Truth)
	if err != nil {
		return fmt.Errorf("truth: %w", err)
	}
	pred, err := SplitTokens(e.Predicted)
	if err != nil {
		return fmt.Errorf("predicted: %w", err)
	}
	n := len(truth)
	if len(pred) != n {
		return fmt.Errorf("%w: truth has %d tokens, predicted has %d", ErrLengthMismatch, n, len(pred))
	}
	if e.Mask != nil && len(e.Mask) != n {
		return fmt.Errorf("%w: truth has %d tokens, mask has %d", ErrLengthMismatch, n, len(e.Mask))
	}
	if e.TokenFeatures != nil && len(e.TokenFeatures) != n {
		return fmt.Errorf("%w: truth has %d tokens, %d feature blocks", ErrLengthMismatch, n, len(e.TokenFeatures))
	}
	if e.TokenResponses != nil && len(e.TokenResponses) != n {
		return fmt.Errorf("%w: truth has %d tokens, %d responses", ErrLengthMismatch, n, len(e.TokenResponses))
	}
	return nil
}

// FeaturesAt returns the feature map attached to token position pos, falling back to
// the per-example block. The returned map must not be modified.
func (e ExampleRecord) FeaturesAt(pos int) map[string]float64 {
	if e.TokenFeatures != nil {
		if pos >= 0 && pos < len(e.TokenFeatures) {
			return e.TokenFeatures[pos]
		}
		return nil
	}
	return e.Features
}
