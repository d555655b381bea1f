// Package generation produces learning/placement recommendation sets.
//
// GetOrGenerate memoizes results per (assessment, role, steps) key, calls
// the primary Generator on a miss and falls back to a deterministic
// generator when the primary fails or returns something unusable.
package generation

import (
	"context"
	"errors"
	"time"

	"skillbridge/internal/assessment"
)

var (
	// ErrInvalidInput is the only error GetOrGenerate returns.
	ErrInvalidInput = errors.New("generation: invalid input")
	// ErrGenerationFailed wraps any primary generator failure.
	ErrGenerationFailed = errors.New("generation: primary generator failed")
	// ErrGeneratorDisabled is returned by the generator used when no AI
	// backend is configured.
	ErrGeneratorDisabled = errors.New("generation: no generator configured")
)

const (
	DefaultRole  = "Software Engineer"
	DefaultSteps = 5
	MaxSteps     = 10
)

// Input describes one recommendation request. Assessment may be nil when
// the caller has no structured result yet.
type Input struct {
	AssessmentID string                 `json:"assessmentId"`
	Role         string                 `json:"role,omitempty"`
	Steps        int                    `json:"steps,omitempty"`
	Assessment   *assessment.Assessment `json:"assessment,omitempty"`
}

type Step struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// RecommendationSet is the artifact both generators produce. UsedFallback
// is the only provenance signal.
type RecommendationSet struct {
	AssessmentID string    `json:"assessmentId"`
	Role         string    `json:"role"`
	Steps        []Step    `json:"steps"`
	MatchScore   int       `json:"matchScore"`
	UsedFallback bool      `json:"usedFallback"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

// Generator is the expensive, externally dependent producer.
type Generator interface {
	Generate(ctx context.Context, in Input) (*RecommendationSet, error)
}

// Outcome is the terminal state of GetOrGenerate.
type Outcome string

const (
	OutcomeCached   Outcome = "cached"
	OutcomePrimary  Outcome = "primary"
	OutcomeFallback Outcome = "fallback"
)

type Result struct {
	Set     RecommendationSet
	Outcome Outcome
}

type disabled struct{}

func (disabled) Generate(context.Context, Input) (*RecommendationSet, error) {
	return nil, ErrGeneratorDisabled
}

// Disabled returns a Generator that always fails, routing every request to
// the fallback.
func Disabled() Generator { return disabled{} }
