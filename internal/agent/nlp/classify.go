package nlp

import (
	"slices"
	"strings"
)

type Intent string

const (
	IntentQuestion  Intent = "Question"
	IntentRequest   Intent = "Request"
	IntentCommand   Intent = "Command"
	IntentGreeting  Intent = "Greeting"
	IntentStatement Intent = "Statement"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

type Tone string

const (
	ToneFormal       Tone = "Formal"
	ToneCasual       Tone = "Casual"
	ToneProfessional Tone = "Professional"
)

type Classification struct {
	Intent    Intent    `json:"intent"`
	Sentiment Sentiment `json:"sentiment"`
	Tone      Tone      `json:"tone"`
}

var (
	interrogatives = []string{"what", "how", "why", "where", "when", "which", "who"}
	requestOpeners = []string{"can you", "could you", "would you", "will you"}
	imperatives    = []string{"show", "list", "tell", "give", "send", "create", "delete", "remove", "open", "run", "stop", "find", "explain", "summarize", "write", "add"}
	greetings      = []string{"hello", "hi", "hey", "greetings"}

	positiveWords = []string{"great", "thanks", "awesome", "good", "love", "excellent", "nice"}
	negativeWords = []string{"bad", "hate", "terrible", "awful", "worse", "broken"}

	formalCues = []string{"please", "thank", "kindly", "regards", "sir", "madam", "appreciate"}
	casualCues = []string{"lol", "haha", "gonna", "wanna", "yo", "u", "ur", "btw", ":)", ":d"}
)

// IsInterrogative reports a question mark anywhere or a leading interrogative word.
func IsInterrogative(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	tokens := Tokenize(text)
	return len(tokens) > 0 && slices.Contains(interrogatives, tokens[0])
}

func Classify(text string) Classification {
	lower := strings.ToLower(strings.TrimSpace(text))
	tokens := Tokenize(lower)
	return Classification{
		Intent:    classifyIntent(text, lower, tokens),
		Sentiment: classifySentiment(tokens),
		Tone:      classifyTone(lower, tokens),
	}
}

func classifyIntent(text, lower string, tokens []string) Intent {
	switch {
	case IsInterrogative(text):
		return IntentQuestion
	case slices.Contains(tokens, "please") || hasAnyPrefix(lower, requestOpeners):
		return IntentRequest
	case len(tokens) > 0 && slices.Contains(imperatives, tokens[0]):
		return IntentCommand
	case containsAny(tokens, greetings):
		return IntentGreeting
	default:
		return IntentStatement
	}
}

func classifySentiment(tokens []string) Sentiment {
	pos := countIn(tokens, positiveWords)
	neg := countIn(tokens, negativeWords)
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func classifyTone(lower string, tokens []string) Tone {
	for _, t := range tokens {
		for _, cue := range formalCues {
			if strings.HasPrefix(t, cue) {
				return ToneFormal
			}
		}
	}
	if len(markersIn(lower, tokens, casualCues)) > 0 || hasContraction(lower) {
		return ToneCasual
	}
	return ToneProfessional
}

func hasContraction(lower string) bool {
	for _, w := range strings.Fields(lower) {
		if i := strings.IndexAny(w, "'’"); i > 0 && i < len(w)-1 {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
