package grading

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Similarity is the SequenceMatcher ratio over the runes of the normalized strings.
// Two empty strings are fully similar.
func Similarity(a, b string) float64 {
	ra, rb := runeTokens(Normalize(a)), runeTokens(Normalize(b))
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	return difflib.NewMatcher(ra, rb).Ratio()
}

// KeywordOverlap is the fraction of the reference's content words present in the candidate.
func KeywordOverlap(reference, candidate string) float64 {
	ref := contentWords(reference)
	if len(ref) == 0 {
		return 0
	}
	cand := contentWords(candidate)
	hit := 0
	for w := range ref {
		if _, ok := cand[w]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(ref))
}

// Weights blends Similarity and KeywordOverlap into a lexical score.
type Weights struct {
	Similarity float64
	Overlap    float64
}

var (
	EvaluateWeights   = Weights{Similarity: 0.4, Overlap: 0.6}
	SubmissionWeights = Weights{Similarity: 0.3, Overlap: 0.7}
)

func (w Weights) Score(reference, candidate string) float64 {
	return w.Similarity*Similarity(candidate, reference) + w.Overlap*KeywordOverlap(reference, candidate)
}

func runeTokens(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
