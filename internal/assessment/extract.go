package assessment

import (
	"sort"
	"strings"
	"time"
)

// vocabulary maps a canonical skill name to the keywords that signal it.
var vocabulary = map[string][]string{
	"Go":               {"go", "golang"},
	"Python":           {"python", "django", "flask", "fastapi"},
	"JavaScript":       {"javascript", "node.js", "nodejs"},
	"TypeScript":       {"typescript"},
	"React":            {"react", "next.js", "nextjs"},
	"Java":             {"java", "spring"},
	"SQL":              {"sql", "postgres", "postgresql", "mysql", "sqlite"},
	"Kubernetes":       {"kubernetes", "k8s", "helm"},
	"Docker":           {"docker", "containers"},
	"AWS":              {"aws", "lambda", "ec2", "s3"},
	"Machine Learning": {"machine learning", "ml", "pytorch", "tensorflow"},
	"Data Analysis":    {"pandas", "data analysis", "analytics"},
	"Rust":             {"rust"},
	"CI/CD":            {"ci/cd", "github actions", "jenkins"},
	"System Design":    {"system design", "distributed systems", "microservices"},
}

// level cue words, strongest first; single words match whole words only
var levelCues = []struct {
	level string
	words []string
}{
	{LevelExpert, []string{"expert", "lead", "principal", "architect", "10+ years"}},
	{LevelAdvanced, []string{"advanced", "senior", "extensive", "5+ years", "proficient"}},
	{LevelBeginner, []string{"beginner", "learning", "basic", "familiar", "junior", "some"}},
}

// Extract matches raw input against the skill vocabulary. The level of a
// matched skill comes from cue words in the same sentence, defaulting to
// intermediate. The result is sorted by name.
func Extract(rawInput string) []Skill {
	found := map[string]string{}

	for _, sentence := range splitSentences(strings.ToLower(rawInput)) {
		words := wordSet(sentence)
		level := sentenceLevel(sentence)
		for name, keywords := range vocabulary {
			if _, seen := found[name]; seen {
				continue
			}
			for _, kw := range keywords {
				if containsKeyword(sentence, words, kw) {
					found[name] = level
					break
				}
			}
		}
	}

	skills := make([]Skill, 0, len(found))
	for name, level := range found {
		skills = append(skills, Skill{Name: name, Level: level})
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills
}

// Analyze builds a real assessment for a record's raw input.
func Analyze(id, rawInput string, now time.Time) Assessment {
	skills := Extract(rawInput)
	return Assessment{
		AssessmentID:     id,
		Skills:           skills,
		OverallScore:     ScoreSkills(skills),
		Summary:          summarize(skills),
		IsRealAssessment: true,
		GeneratedAt:      now.UTC(),
	}
}

func summarize(skills []Skill) string {
	if len(skills) == 0 {
		return "No recognised skills were found in the submitted experience."
	}
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return "Identified skills: " + strings.Join(names, ", ") + "."
}

func splitSentences(s string) []string {
	s = strings.ReplaceAll(s, ". ", "\n")
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ';' || r == '!' || r == '?' || r == '。'
	})
}

// wordSet holds single tokens, used for short keywords like "go" or "ml"
// that would otherwise match inside other words.
func wordSet(sentence string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(sentence, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '#' || r == '/' || r == '.')
	}) {
		set[strings.TrimSuffix(w, ".")] = struct{}{}
	}
	return set
}

func containsKeyword(sentence string, words map[string]struct{}, kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(sentence, kw)
	}
	_, ok := words[kw]
	return ok
}

// sentenceLevel looks for level cues outside skill phrases, so the
// "learning" in "machine learning" is not read as beginner.
func sentenceLevel(sentence string) string {
	sentence = phraseRemover.Replace(sentence)
	words := wordSet(sentence)
	for _, cue := range levelCues {
		for _, w := range cue.words {
			if containsKeyword(sentence, words, w) {
				return cue.level
			}
		}
	}
	return LevelIntermediate
}

// phraseRemover blanks out multi-word skill keywords.
var phraseRemover = func() *strings.Replacer {
	var oldnew []string
	for _, keywords := range vocabulary {
		for _, kw := range keywords {
			if strings.Contains(kw, " ") {
				oldnew = append(oldnew, kw, " ")
			}
		}
	}
	return strings.NewReplacer(oldnew...)
}()
