package nlp

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RE2 has no Unicode word boundary; boundaries are checked in entitySpans.
var entityPattern = regexp.MustCompile(`\p{Lu}[\p{Ll}\p{M}]+(?:\s+\p{Lu}[\p{Ll}\p{M}]+){0,3}`)

var sentenceStarters = []string{"hello", "hi", "hey", "please", "thanks", "yes", "no", "what", "how", "why", "where", "when", "which", "who", "can", "could", "would", "should", "maybe", "but", "so", "if"}

// Entities extracts runs of one to four capitalized words, deduplicated
// case-insensitively in first-seen order. A lone capitalized stop word is not an entity.
func Entities(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, span := range entitySpans(text) {
		e := strings.Join(strings.Fields(span), " ")
		lower := strings.ToLower(e)
		if !strings.Contains(e, " ") && (IsStopWord(lower) || containsAny([]string{lower}, sentenceStarters)) {
			continue
		}
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, e)
	}
	return out
}

// entitySpans returns pattern matches that start and end on a word boundary.
// A run whose last word is glued to more word characters is shortened a word
// at a time.
func entitySpans(text string) []string {
	var out []string
	for _, loc := range entityPattern.FindAllStringIndex(text, -1) {
		start := loc[0]
		if prev, _ := utf8.DecodeLastRuneInString(text[:start]); start > 0 && isWordRune(prev) {
			continue
		}
		span := text[start:loc[1]]
		for span != "" {
			next, _ := utf8.DecodeRuneInString(text[start+len(span):])
			if start+len(span) == len(text) || !isWordRune(next) {
				break
			}
			i := strings.LastIndexFunc(span, unicode.IsSpace)
			if i < 0 {
				span = ""
				break
			}
			span = strings.TrimRightFunc(span[:i], unicode.IsSpace)
		}
		if span != "" {
			out = append(out, span)
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
