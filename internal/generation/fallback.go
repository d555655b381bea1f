package generation

import (
	"fmt"
	"strings"
	"time"

	"skillbridge/internal/assessment"
)

type roleProfile struct {
	keywords []string
	skills   []string
}

// Profiles are matched in order; the last one is the catch-all.
var roleProfiles = []roleProfile{
	{keywords: []string{"frontend", "front-end", "ui", "web"}, skills: []string{"JavaScript", "TypeScript", "React", "CI/CD"}},
	{keywords: []string{"data", "ml", "machine learning", "analyst", "scientist"}, skills: []string{"Python", "SQL", "Data Analysis", "Machine Learning"}},
	{keywords: []string{"devops", "sre", "platform", "infrastructure", "cloud"}, skills: []string{"Docker", "Kubernetes", "CI/CD", "AWS"}},
	{keywords: []string{"backend", "back-end", "api", "server"}, skills: []string{"Go", "SQL", "System Design", "Docker", "Kubernetes"}},
	{skills: []string{"System Design", "SQL", "CI/CD", "Docker"}},
}

var genericSteps = []Step{
	{Title: "Build a portfolio project", Description: "Ship a small end-to-end project that uses the skills above and publish the source.", Skills: []string{}},
	{Title: "Practice technical interviews", Description: "Work through timed problem-solving and system walkthroughs for the target role.", Skills: []string{}},
	{Title: "Contribute to open source", Description: "Land a reviewed change in a project used by teams hiring for this role.", Skills: []string{}},
	{Title: "Document your impact", Description: "Rewrite your CV around measurable outcomes from past work.", Skills: []string{}},
	{Title: "Apply to matched roles", Description: "Shortlist openings that fit your current level and apply with tailored notes.", Skills: []string{}},
}

// Fallback builds a recommendation set without any network call. The same
// input always yields the same steps and score; only GeneratedAt varies.
func Fallback(in Input, now time.Time) RecommendationSet {
	in = normalize(in)

	var skills []assessment.Skill
	if in.Assessment != nil {
		skills = in.Assessment.Skills
	}
	have := make(map[string]string, len(skills))
	for _, s := range skills {
		have[strings.ToLower(s.Name)] = strings.ToLower(strings.TrimSpace(s.Level))
	}

	var steps []Step
	for _, skill := range profileFor(in.Role).skills {
		level, ok := have[strings.ToLower(skill)]
		switch {
		case !ok:
			steps = append(steps, Step{
				Title:       "Learn " + skill,
				Description: fmt.Sprintf("%s is expected for %s roles. Start with fundamentals and finish one guided project.", skill, in.Role),
				Skills:      []string{skill},
			})
		case level == assessment.LevelBeginner || level == assessment.LevelIntermediate || level == "":
			steps = append(steps, Step{
				Title:       "Deepen " + skill,
				Description: fmt.Sprintf("Move %s from %s to advanced by applying it in production-style work.", skill, orDefault(level, "intermediate")),
				Skills:      []string{skill},
			})
		}
	}
	for _, g := range genericSteps {
		if len(steps) >= in.Steps {
			break
		}
		steps = append(steps, g)
	}
	if len(steps) > in.Steps {
		steps = steps[:in.Steps]
	}

	return RecommendationSet{
		AssessmentID: in.AssessmentID,
		Role:         in.Role,
		Steps:        steps,
		MatchScore:   assessment.ScoreSkills(skills),
		UsedFallback: true,
		GeneratedAt:  now.UTC(),
	}
}

func profileFor(role string) roleProfile {
	r := strings.ToLower(role)
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(r, func(c rune) bool { return c == ' ' || c == '/' || c == ',' }) {
		words[w] = true
	}

	for _, p := range roleProfiles[:len(roleProfiles)-1] {
		for _, kw := range p.keywords {
			// multi-word keywords match as phrases, the rest as whole words
			if words[kw] || (strings.ContainsAny(kw, " -") && strings.Contains(r, kw)) {
				return p
			}
		}
	}
	return roleProfiles[len(roleProfiles)-1]
}

// normalize applies defaults; it does not validate.
func normalize(in Input) Input {
	in.AssessmentID = strings.TrimSpace(in.AssessmentID)
	in.Role = strings.TrimSpace(in.Role)
	if in.Role == "" {
		in.Role = DefaultRole
	}
	if in.Steps <= 0 {
		in.Steps = DefaultSteps
	}
	if in.Steps > MaxSteps {
		in.Steps = MaxSteps
	}
	return in
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
