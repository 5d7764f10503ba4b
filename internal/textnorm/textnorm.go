// Package textnorm canonicalizes free text for matching. All grading
// components share this normalization so that comparisons are consistent.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stemLanguage is the language the stemming backend is tuned to.
const stemLanguage = "french"

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns the canonical form of s: case-folded, diacritics
// stripped, punctuation replaced by spaces, whitespace collapsed.
// It is a pure function and idempotent: normalizing already-normalized
// text yields the same output.
func Normalize(s string) string {
	stripped, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	space := false
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(unicode.ToLower(r))
		default:
			// punctuation and whitespace both act as separators
			space = true
		}
	}
	return b.String()
}

// Tokens returns the normalized tokens of s with stopwords removed and
// each remaining token stemmed to its root form. When the stemmer does
// not accept a token it is kept as-is, so the degraded output is still
// deterministic.
func Tokens(s string) []string {
	fields := strings.Fields(Normalize(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, Stem(f))
	}
	return tokens
}

// Stem reduces a single normalized token to its root form.
func Stem(token string) string {
	stemmed, err := snowball.Stem(token, stemLanguage, false)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}

// TokenSet converts a token slice into a membership set.
func TokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Sentences splits raw text into sentence-sized windows for the semantic
// matching tier. The returned sentences are raw, not normalized: the
// similarity backend applies its own normalization.
func Sentences(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '.', '!', '?', ';', '\n':
			return true
		}
		return false
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}
