// Package keyword holds the deterministic keyword extractor used when the remote
// key-phrase service is unavailable.
package keyword

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const DefaultLimit = 5

// Extract ranks Korean words longer than one syllable and English words longer than
// two letters by frequency, ignoring stopwords. Ties keep first-seen order.
func Extract(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	text = norm.NFC.String(strings.ToLower(text))

	counts := map[string]int{}
	var order []string
	add := func(w string) {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	for _, token := range strings.FieldsFunc(text, isSeparator) {
		for _, w := range splitScripts(token) {
			switch {
			case isHangulWord(w):
				if _, stop := koreanStopwords[w]; !stop && utf8.RuneCountInString(w) > 1 {
					add(w)
				}
			case isLatinWord(w):
				if _, stop := englishStopwords[w]; !stop && len(w) > 2 {
					add(w)
				}
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

// isSeparator treats everything except letters, digits and underscore as a break.
func isSeparator(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

// splitScripts cuts a token into runs of Hangul syllables and runs of ASCII letters.
// Mixed tokens such as "tcp프로토콜" yield both parts; digits and other scripts drop out.
func splitScripts(token string) []string {
	var out []string
	var b strings.Builder
	kind := 0
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	for _, r := range token {
		k := 0
		switch {
		case isHangulSyllable(r):
			k = 1
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			k = 2
		}
		if k != kind {
			flush()
			kind = k
		}
		if k != 0 {
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

func isHangulSyllable(r rune) bool { return r >= '가' && r <= '힣' }

func isHangulWord(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return isHangulSyllable(r)
}

func isLatinWord(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}
