package assessment

import "strings"

// DefaultScore is returned when no skill level maps to a score.
const DefaultScore = 75

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelExpert       = "expert"
)

var levelScores = map[string]int{
	LevelBeginner:     40,
	LevelIntermediate: 65,
	LevelAdvanced:     85,
	LevelExpert:       95,
}

// LevelScore maps a categorical level to its score.
func LevelScore(level string) (int, bool) {
	s, ok := levelScores[strings.ToLower(strings.TrimSpace(level))]
	return s, ok
}

// ScoreSkills averages the scores of recognised levels, rounding to the
// nearest integer. Unrecognised levels are ignored; with nothing to
// average it returns DefaultScore.
func ScoreSkills(skills []Skill) int {
	total, n := 0, 0
	for _, s := range skills {
		if score, ok := LevelScore(s.Level); ok {
			total += score
			n++
		}
	}
	if n == 0 {
		return DefaultScore
	}
	return (total + n/2) / n
}
