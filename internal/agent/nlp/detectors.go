package nlp

import (
	"strings"
	"unicode"
)

type Question struct {
	Text     string   `json:"text"`
	Score    float64  `json:"score"`
	Entities []string `json:"entities,omitempty"`
}

// Detections are derived conversational signals of one message.
type Detections struct {
	AmbiguityScore       float64    `json:"ambiguity_score"`
	VaguePronouns        int        `json:"vague_pronouns"`
	WeakVerbs            int        `json:"weak_verbs"`
	HasSVO               bool       `json:"has_svo"`
	ShortMessage         bool       `json:"short_message"`
	CasualMarkers        []string   `json:"casual_markers,omitempty"`
	FormalMarkers        []string   `json:"formal_markers,omitempty"`
	PoliteMarkers        []string   `json:"polite_markers,omitempty"`
	RudeMarkers          []string   `json:"rude_markers,omitempty"`
	SentimentPositive    int        `json:"sentiment_positive"`
	SentimentNegative    int        `json:"sentiment_negative"`
	ExcitementMarkers    int        `json:"excitement_markers"`
	FrustrationMarkers   int        `json:"frustration_markers"`
	HesitationMarkers    []string   `json:"hesitation_markers,omitempty"`
	UrgencyMarkers       []string   `json:"urgency_markers,omitempty"`
	Questions            []Question `json:"questions,omitempty"`
	Negators             []string   `json:"negators,omitempty"`
	UnresolvedReferences []string   `json:"unresolved_references,omitempty"`
	Comparisons          []string   `json:"comparisons,omitempty"`
	Conditionals         []string   `json:"conditionals,omitempty"`
	Enumerations         []string   `json:"enumerations,omitempty"`
	Incomplete           bool       `json:"incomplete"`
	IncompleteReason     string     `json:"incomplete_reason,omitempty"`
}

var (
	vaguePronouns = []string{"it", "this", "that"}
	weakVerbs     = []string{"do", "make", "get"}
	svoSubjects   = []string{"i", "we", "you", "they", "he", "she", "it"}
	svoVerbs      = []string{"is", "are", "was", "were", "do", "does", "did", "make", "get", "have", "has", "had"}

	casualMarkers    = []string{"yo", "lol", "gonna", "u", "ur"}
	formalMarkers    = []string{"would", "kindly", "regarding", "accordingly", "appreciate"}
	politeMarkers    = []string{"please", "thank you", "thanks", "appreciated"}
	rudeMarkers      = []string{"damn", "shit", "fuck", "bitch", "asshole"}
	hesitation       = []string{"maybe", "i think", "not sure", "possibly", "perhaps"}
	urgency          = []string{"asap", "urgent", "now", "immediately", "deadline"}
	negators         = []string{"not", "don't", "never", "except", "no", "without"}
	references       = []string{"it", "that", "the last one", "this"}
	comparisonCues   = []string{" vs ", "better than", "difference between", "compare", "comparison"}
	conditionalCues  = []string{" if ", " when ", " unless ", " provided that "}
	enumerationCues  = []string{",", ";", "1.", "2.", "- "}
	questionOpeners  = []string{"what", "how", "why", "where", "when", "which"}
	trailingConjunct = []string{" and", " or", " but"}
)

// Detect computes detector signals. recentContext is the number of recent
// messages in the room; any context dampens the ambiguity score.
func Detect(text string, recentContext int) Detections {
	lower := strings.ToLower(text)
	tokens := Tokenize(lower)
	var d Detections

	d.VaguePronouns = countIn(tokens, vaguePronouns)
	d.WeakVerbs = countIn(tokens, weakVerbs)
	d.HasSVO = containsAny(tokens, svoSubjects) && containsAny(tokens, svoVerbs) && len(tokens) > 4
	d.ShortMessage = len(tokens) < 4
	d.AmbiguityScore = ambiguityScore(d, recentContext)

	d.CasualMarkers = markersIn(lower, tokens, casualMarkers)
	d.FormalMarkers = markersIn(lower, tokens, formalMarkers)
	d.PoliteMarkers = markersIn(lower, tokens, politeMarkers)
	d.RudeMarkers = markersIn(lower, tokens, rudeMarkers)

	d.SentimentPositive = countIn(tokens, positiveWords)
	d.SentimentNegative = countIn(tokens, negativeWords)
	d.ExcitementMarkers = strings.Count(text, "!")
	if strings.IndexFunc(text, unicode.IsUpper) >= 0 {
		d.ExcitementMarkers++
	}
	d.FrustrationMarkers = len(d.RudeMarkers)
	if strings.Contains(lower, "again") || strings.Contains(lower, "still broken") {
		d.FrustrationMarkers++
	}

	d.HesitationMarkers = markersIn(lower, tokens, hesitation)
	d.UrgencyMarkers = markersIn(lower, tokens, urgency)
	d.Questions = extractQuestions(text)

	d.Negators = markersIn(lower, tokens, negators)
	d.UnresolvedReferences = markersIn(lower, tokens, references)
	d.Comparisons = phrasesIn(lower, comparisonCues)
	d.Conditionals = phrasesIn(" "+lower+" ", conditionalCues)
	d.Enumerations = phrasesIn(lower, enumerationCues)

	d.Incomplete, d.IncompleteReason = incompleteness(text, lower, tokens, d.HasSVO)
	return d
}

func ambiguityScore(d Detections, recentContext int) float64 {
	score := float64(d.VaguePronouns)*0.6 + float64(d.WeakVerbs)*0.4
	if !d.HasSVO {
		score += 1.5
	}
	if d.ShortMessage {
		score += 0.8
	}
	if recentContext > 0 {
		score *= 0.8
	}
	return score
}

// phrasesIn matches cues as plain substrings.
func phrasesIn(lower string, cues []string) []string {
	var out []string
	for _, c := range cues {
		if strings.Contains(lower, c) {
			out = append(out, strings.TrimSpace(c))
		}
	}
	return out
}

func extractQuestions(text string) []Question {
	if !strings.Contains(text, "?") {
		return nil
	}
	segments := strings.Split(text, "?")
	// The text after the last '?' is not a question.
	segments = segments[:len(segments)-1]

	seen := make(map[string]struct{})
	var out []Question
	for _, seg := range segments {
		s := strings.TrimSpace(seg)
		if i := strings.LastIndexAny(s, ".!"); i >= 0 {
			s = strings.TrimSpace(s[i+1:])
		}
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		score := 0.8
		if len(s) < 10 {
			score = 0.5
		}
		if hasAnyPrefix(key, questionOpeners) {
			score = min(score+0.1, 1)
		}
		out = append(out, Question{Text: s, Score: score, Entities: Entities(s)})
	}
	return out
}

func incompleteness(text, lower string, tokens []string, hasSVO bool) (bool, string) {
	trimmed := strings.TrimRight(text, " \t\r\n")
	lowerTrimmed := strings.TrimRight(lower, " \t\r\n")
	switch {
	case strings.HasSuffix(trimmed, "...") || strings.HasSuffix(trimmed, "…"):
		return true, "ellipsis"
	case strings.HasSuffix(trimmed, "-"):
		return true, "dash"
	case hasAnySuffix(lowerTrimmed, trailingConjunct):
		return true, "conjunction"
	case len(tokens) < 2 || (!hasSVO && len(tokens) < 5):
		return true, "fragment"
	default:
		return false, ""
	}
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// IsAmbiguous is true for short messages (at most three words) and explicit questions.
func IsAmbiguous(text string) bool {
	return WordCount(text) <= 3 || IsInterrogative(text)
}
