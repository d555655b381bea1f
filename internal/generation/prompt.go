package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const systemPrompt = `You are a career coach for software and data professionals.
Given a candidate's assessed skills and a target role, produce an ordered learning and placement plan.
Reply with a single JSON object and nothing else:
{"matchScore": <integer 0-100>, "steps": [{"title": "...", "description": "...", "skills": ["..."]}]}`

type promptPayload struct {
	TargetRole string   `json:"targetRole"`
	StepCount  int      `json:"stepCount"`
	Skills     []string `json:"skills"`
	Summary    string   `json:"summary,omitempty"`
}

// userPrompt renders the per-request part of the prompt.
func userPrompt(in Input) (string, error) {
	p := promptPayload{
		TargetRole: in.Role,
		StepCount:  in.Steps,
		Skills:     []string{},
	}
	if in.Assessment != nil {
		for _, s := range in.Assessment.Skills {
			p.Skills = append(p.Skills, s.Name+" ("+s.Level+")")
		}
		p.Summary = in.Assessment.Summary
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Candidate profile:\n%s\nReturn exactly %d steps.", raw, in.Steps), nil
}

type modelOutput struct {
	MatchScore int    `json:"matchScore"`
	Steps      []Step `json:"steps"`
}

// parseModelOutput decodes a completion, tolerating markdown code fences.
func parseModelOutput(text string) (*RecommendationSet, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	if text == "" {
		return nil, errors.New("empty completion")
	}

	var out modelOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if len(out.Steps) == 0 {
		return nil, errors.New("completion has no steps")
	}
	return &RecommendationSet{Steps: out.Steps, MatchScore: out.MatchScore}, nil
}
