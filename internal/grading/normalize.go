package grading

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold trims, NFC-normalizes, lowercases and collapses whitespace. Punctuation is kept.
func Fold(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Normalize is Fold with punctuation and symbols removed.
func Normalize(s string) string {
	s = norm.NFC.String(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var overlapStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "to": {}, "in": {}, "for": {}, "on": {}, "at": {},
	"그": {}, "이": {}, "그리고": {}, "또한": {},
}

// contentWords returns the distinct normalized words of s minus a small stopword set.
func contentWords(s string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, w := range strings.Fields(Normalize(s)) {
		if _, stop := overlapStopwords[w]; stop {
			continue
		}
		words[w] = struct{}{}
	}
	return words
}
