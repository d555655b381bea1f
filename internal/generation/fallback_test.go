package generation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"skillbridge/internal/assessment"
)

func TestFallbackEmptySkillsUsesDefaultScore(t *testing.T) {
	set := Fallback(Input{AssessmentID: "a-1"}, time.Now())

	if !set.UsedFallback {
		t.Fatalf("fallback set must be flagged")
	}
	if set.MatchScore != assessment.DefaultScore {
		t.Fatalf("expected default score %d, got %d", assessment.DefaultScore, set.MatchScore)
	}
	if len(set.Steps) != DefaultSteps {
		t.Fatalf("expected %d steps, got %d", DefaultSteps, len(set.Steps))
	}
	if set.Role != DefaultRole {
		t.Fatalf("expected default role, got %q", set.Role)
	}
	if err := Validate(set); err != nil {
		t.Fatalf("fallback set must satisfy the schema: %v", err)
	}
}

func TestFallbackTargetsMissingSkills(t *testing.T) {
	in := Input{
		AssessmentID: "a-2",
		Role:         "Backend Engineer",
		Steps:        3,
		Assessment: &assessment.Assessment{
			Skills: []assessment.Skill{
				{Name: "Go", Level: "expert"},
				{Name: "SQL", Level: "beginner"},
			},
		},
	}
	set := Fallback(in, time.Now())

	var titles []string
	for _, s := range set.Steps {
		titles = append(titles, s.Title)
	}
	want := []string{"Deepen SQL", "Learn System Design", "Learn Docker"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Fatalf("unexpected steps (-want +got):\n%s", diff)
	}
	if set.MatchScore != 68 {
		t.Fatalf("expected averaged score 68, got %d", set.MatchScore)
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	in := Input{AssessmentID: "a-3", Role: "data scientist", Steps: 7}
	a := Fallback(in, time.Unix(0, 0))
	b := Fallback(in, time.Unix(100, 0))

	if diff := cmp.Diff(a, b, cmpopts.IgnoreFields(RecommendationSet{}, "GeneratedAt")); diff != "" {
		t.Fatalf("fallback not deterministic:\n%s", diff)
	}
}

func TestFallbackUnknownLevelsStillTotal(t *testing.T) {
	in := Input{
		AssessmentID: "a-4",
		Steps:        MaxSteps,
		Assessment:   &assessment.Assessment{Skills: []assessment.Skill{{Name: "Docker", Level: "???"}}},
	}
	set := Fallback(in, time.Now())
	if set.MatchScore != assessment.DefaultScore {
		t.Fatalf("expected default score, got %d", set.MatchScore)
	}
	if err := Validate(set); err != nil {
		t.Fatalf("schema: %v", err)
	}
}

func TestProfileForRole(t *testing.T) {
	tests := map[string]string{
		"Frontend Developer":   "JavaScript",
		"Site Reliability SRE": "Docker",
		"Data Analyst":         "Python",
		"Backend Engineer":     "Go",
		"HTML author":          "System Design",
	}
	for role, first := range tests {
		if got := profileFor(role).skills[0]; got != first {
			t.Errorf("profileFor(%q) first skill = %q, want %q", role, got, first)
		}
	}
}
