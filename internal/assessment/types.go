// Package assessment holds the skills-assessment domain: records, the
// structured assessment artifact, skill scoring and keyword extraction.
package assessment

import (
	"encoding/json"
	"time"
)

// Skill is one assessed skill. Level is categorical (see ScoreSkills).
type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// Assessment is the structured result attached to a Record.
type Assessment struct {
	AssessmentID     string    `json:"assessmentId"`
	Skills           []Skill   `json:"skills"`
	OverallScore     int       `json:"overallScore"`
	Summary          string    `json:"summary"`
	IsRealAssessment bool      `json:"isRealAssessment"`
	GeneratedAt      time.Time `json:"generatedAt"`
}

// Record is the durable row for one submitted assessment.
// Artifact and Secondary stay nil until later requests enrich the record.
type Record struct {
	ID        string          `json:"id"`
	RawInput  string          `json:"rawInput"`
	Artifact  *Assessment     `json:"artifact,omitempty"`
	Secondary json.RawMessage `json:"secondaryArtifact,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Placeholder returns a renderable assessment for an id that has no real
// result anywhere. IsRealAssessment is always false.
func Placeholder(id string, now time.Time) Assessment {
	return Assessment{
		AssessmentID:     id,
		Skills:           []Skill{},
		OverallScore:     DefaultScore,
		Summary:          "No assessment has been completed yet. Submit your experience to get a personalised result.",
		IsRealAssessment: false,
		GeneratedAt:      now.UTC(),
	}
}
