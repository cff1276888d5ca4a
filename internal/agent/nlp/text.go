// Package nlp holds the pure lexical analyzers behind the preprocessing stages.
// Every function is deterministic in its input.
package nlp

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokenize splits on non-alphanumeric boundaries and lower-cases.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Fold strips combining marks, so "français" becomes "francais".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func containsAny(tokens []string, set []string) bool {
	for _, t := range tokens {
		if slices.Contains(set, t) {
			return true
		}
	}
	return false
}

func countIn(tokens []string, set []string) int {
	n := 0
	for _, t := range tokens {
		if slices.Contains(set, t) {
			n++
		}
	}
	return n
}

// markersIn returns the markers present in lower. Single words match whole
// tokens; phrases match as substrings.
func markersIn(lower string, tokens []string, markers []string) []string {
	var out []string
	for _, m := range markers {
		if strings.ContainsAny(m, " :;,.'") {
			if strings.Contains(lower, m) {
				out = append(out, strings.TrimSpace(m))
			}
			continue
		}
		if slices.Contains(tokens, m) {
			out = append(out, m)
		}
	}
	return out
}
