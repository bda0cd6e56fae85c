package grading

import (
	"regexp"
	"strings"
)

var (
	optionLine    = regexp.MustCompile(`^(\d+)\.\s*(.*)$`)
	abbreviation  = regexp.MustCompile(`[A-Z]{2,}`)
	listSeparator = regexp.MustCompile(`[,，]`)
)

type option struct {
	Number string
	Text   string
}

// parseOptions reads "1. text" lines from an example block; other lines are ignored.
func parseOptions(example string) []option {
	var opts []option
	for _, line := range strings.Split(example, "\n") {
		m := optionLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		opts = append(opts, option{Number: m[1], Text: strings.TrimSpace(m[2])})
	}
	return opts
}

// matchesOption reports whether answer identifies an option and userAnswer names the
// same option by number or by text.
func matchesOption(userAnswer, answer, example string) bool {
	user := strings.TrimSpace(userAnswer)
	normUser := Normalize(user)
	normAnswer := Normalize(answer)
	for _, opt := range parseOptions(example) {
		normText := Normalize(opt.Text)
		if answer != opt.Number && normAnswer != normText {
			continue
		}
		if user == opt.Number || (normText != "" && normUser == normText) {
			return true
		}
	}
	return false
}

func demandsAbbreviation(questionText string) bool {
	return strings.Contains(questionText, "영문 약어") || strings.Contains(questionText, "영문약어")
}

func isList(answer string) bool {
	return strings.ContainsAny(answer, ",，")
}

func splitList(s string) []string {
	parts := listSeparator.Split(s, -1)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// listMatchRatio is the share of positions whose items are equal after normalization,
// measured against the longer of the two lists. Only 1 means the lists match.
// A reply without separators is read as whitespace-separated items.
func listMatchRatio(userAnswer, answer string) float64 {
	want := splitList(answer)
	got := strings.Fields(userAnswer)
	if isList(userAnswer) {
		got = splitList(userAnswer)
	}
	n := max(len(want), len(got))
	hit := 0
	for i := 0; i < min(len(want), len(got)); i++ {
		if Normalize(want[i]) == Normalize(got[i]) {
			hit++
		}
	}
	return float64(hit) / float64(n)
}
