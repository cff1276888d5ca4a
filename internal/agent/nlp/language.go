package nlp

import "strings"

const DefaultLanguage = "en"

var languageCues = []struct {
	lang   string
	marks  string
	tokens []string
}{
	{lang: "es", marks: "¿¡", tokens: []string{"hola", "gracias", "adios", "buenos", "buenas"}},
	{lang: "fr", tokens: []string{"bonjour", "merci", "francais", "salut"}},
	{lang: "de", tokens: []string{"hallo", "danke", "bitte", "guten"}},
}

// DetectLanguage matches characteristic words and punctuation, falling back to English.
func DetectLanguage(text string) string {
	tokens := Tokenize(Fold(text))
	for _, cue := range languageCues {
		if cue.marks != "" && strings.ContainsAny(text, cue.marks) {
			return cue.lang
		}
		if containsAny(tokens, cue.tokens) {
			return cue.lang
		}
	}
	return DefaultLanguage
}
