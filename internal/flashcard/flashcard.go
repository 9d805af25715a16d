package flashcard

import (
	"strings"
)

// Grammar holds the line markers that open question and answer segments
type Grammar struct {
	Name     string
	Question string // Line prefix that starts a question
	Answer   string // Line prefix that starts an answer
}

var (
	// Viewer is the canonical grammar: ?? starts a question, ?> an answer
	Viewer = Grammar{Name: "viewer", Question: "??", Answer: "?>"}
	// Legacy is the older grammar: ?> starts a question, > an answer
	Legacy = Grammar{Name: "legacy", Question: "?>", Answer: ">"}
)

// GrammarByName returns the grammar registered under name, falling back to Viewer
func GrammarByName(name string) (Grammar, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Viewer.Name:
		return Viewer, true
	case Legacy.Name:
		return Legacy, true
	default:
		return Viewer, false
	}
}

// Pair is one reconciled question/answer entry of a deck
type Pair struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Parse scans text and returns the raw question and answer segments.
// Segments keep their whitespace; callers trim if they need to.
func Parse(text string, g Grammar) (questions, answers []string) {
	lines := strings.Split(text, "\n")
	questions = scanSegments(lines, g.Question, g.Answer)
	answers = scanSegments(lines, g.Answer, g.Question)
	return questions, answers
}

// scanSegments collects every segment opened by a line starting with open
// and closed by a line starting with stop, or by the end of input.
// A stop line is checked again as a potential opener.
func scanSegments(lines []string, open, stop string) []string {
	segments := make([]string, 0)
	if open == "" {
		return segments
	}

	var current strings.Builder
	inside := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if inside {
			if stop != "" && strings.HasPrefix(line, stop) {
				segments = append(segments, current.String())
				current.Reset()
				inside = false
				i-- // re-examine the terminator as an opener
				continue
			}
			current.WriteString("\n")
			current.WriteString(line)
			continue
		}

		if strings.HasPrefix(line, open) {
			inside = true
			current.WriteString(line[len(open):])
		}
	}

	if inside {
		segments = append(segments, current.String())
	}
	return segments
}

// Zip aligns questions with answers by position.
// The shorter list is padded with empty strings; inputs are not modified.
func Zip(questions, answers []string) ([]Pair, int) {
	count := max(len(questions), len(answers))
	pairs := make([]Pair, count)
	for i := 0; i < count; i++ {
		if i < len(questions) {
			pairs[i].Question = questions[i]
		}
		if i < len(answers) {
			pairs[i].Answer = answers[i]
		}
	}
	return pairs, count
}

// Extract parses text, trims every segment and zips the result
func Extract(text string, g Grammar) ([]Pair, int) {
	questions, answers := Parse(text, g)
	return Zip(trimAll(questions), trimAll(answers))
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
