package nlp

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// RecapLength is the rune length past which a message should be recapped before answering.
const RecapLength = 120

type Level int

const (
	Trivial Level = iota
	Simple
	Moderate
	Complex
	VeryComplex
)

func (l Level) String() string {
	switch l {
	case Trivial:
		return "TRIVIAL"
	case Simple:
		return "SIMPLE"
	case Moderate:
		return "MODERATE"
	case Complex:
		return "COMPLEX"
	default:
		return "VERY_COMPLEX"
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for c := Trivial; c <= VeryComplex; c++ {
		if c.String() == s {
			*l = c
			return nil
		}
	}
	return fmt.Errorf("unknown complexity level %q", s)
}

func levelFor(score float64) Level {
	switch {
	case score < 0.2:
		return Trivial
	case score < 0.4:
		return Simple
	case score < 0.6:
		return Moderate
	case score < 0.8:
		return Complex
	default:
		return VeryComplex
	}
}

type Factors struct {
	Length    float64 `json:"length"`
	Questions float64 `json:"questions"`
	Domain    float64 `json:"domain"`
	Context   float64 `json:"context"`
	Reasoning float64 `json:"reasoning"`
}

func (f Factors) values() []float64 {
	return []float64{f.Length, f.Questions, f.Domain, f.Context, f.Reasoning}
}

func (f Factors) Average() float64 {
	sum := 0.0
	for _, v := range f.values() {
		sum += v
	}
	return sum / 5
}

type TokenEstimate struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

type Complexity struct {
	Level           Level         `json:"level"`
	Score           float64       `json:"score"`
	Factors         Factors       `json:"factors"`
	Words           int           `json:"words"`
	Sentences       int           `json:"sentences"`
	EstimatedSteps  int           `json:"estimated_steps"`
	EstimatedTokens TokenEstimate `json:"estimated_tokens"`
	Confidence      float64       `json:"confidence"`
	Reasoning       string        `json:"reasoning"`
	// NeedsRecap drives the summarize-and-confirm action.
	NeedsRecap bool `json:"needs_recap"`
}

var (
	complexQuestionPatterns = []string{
		"how do i", "how can i", "how would", "why does", "why is", "why would",
		"what's the difference", "what is the best way", "can you explain",
		"could you help me understand", "multiple", "several", "various",
	}
	technicalTerms = []string{
		"algorithm", "implement", "code", "function", "system", "architecture", "database",
		"optimization", "performance", "security", "encryption", "network", "protocol", "api",
		"machine learning", "neural network", "blockchain", "distributed", "concurrent", "async", "runtime",
	}
	contextPatterns = []string{
		"previous", "earlier", "before", "last time", "you said", "you mentioned",
		"as discussed", "continue", "following up", "regarding",
	}
	contextPronouns   = []string{"it", "this", "that", "these", "those", "they"}
	reasoningPatterns = []string{
		"step by step", "first", "then", "finally", "process", "explain how", "explain why",
		"reasoning", "logic", "compare", "contrast", "analyze", "evaluate", "pros and cons",
		"advantages", "disadvantages", "consider", "think about", "take into account",
	}
)

// AssessComplexity scores text on five factors. recentMessages is the number
// of earlier messages in the room.
func AssessComplexity(text string, recentMessages int) Complexity {
	lower := strings.ToLower(text)
	words := WordCount(text)
	f := Factors{
		Length:    lengthScore(words),
		Questions: questionScore(text, lower),
		Domain:    domainScore(lower),
		Context:   contextScore(lower, Tokenize(lower), recentMessages),
		Reasoning: reasoningScore(lower),
	}

	peak := 0.0
	for _, v := range f.values() {
		peak = max(peak, v)
	}
	score := f.Average()*0.7 + peak*0.3
	level := levelFor(score)

	return Complexity{
		Level:           level,
		Score:           score,
		Factors:         f,
		Words:           words,
		Sentences:       sentenceCount(text),
		EstimatedSteps:  baseSteps[level] + int(f.Reasoning*3),
		EstimatedTokens: estimateTokens(level, f, text),
		Confidence:      confidence(f),
		Reasoning: fmt.Sprintf(
			"Complexity: %s | Factors: length=%.2f, questions=%.2f, domain=%.2f, context=%.2f, reasoning=%.2f | Average: %.2f",
			level, f.Length, f.Questions, f.Domain, f.Context, f.Reasoning, f.Average()),
		NeedsRecap: utf8.RuneCountInString(text) > RecapLength || level >= Complex,
	}
}

func lengthScore(words int) float64 {
	switch {
	case words <= 5:
		return 0.1
	case words <= 15:
		return 0.2
	case words <= 50:
		return 0.4
	case words <= 150:
		return 0.6
	case words <= 300:
		return 0.8
	default:
		return 1.0
	}
}

func questionScore(text, lower string) float64 {
	score := min(float64(strings.Count(text, "?"))*0.2, 0.4)
	for _, p := range complexQuestionPatterns {
		if strings.Contains(lower, p) {
			score += 0.15
		}
	}
	if strings.Contains(lower, " and ") || strings.Contains(lower, " or ") {
		score += 0.2
	}
	return min(score, 1)
}

func domainScore(lower string) float64 {
	hits := 0
	for _, t := range technicalTerms {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return min(0.2+0.15*float64(hits), 1)
}

func contextScore(lower string, tokens []string, recentMessages int) float64 {
	score := 0.0
	for _, p := range contextPatterns {
		if strings.Contains(lower, p) {
			score += 0.2
		}
	}
	score += 0.1 * float64(len(markersIn(lower, tokens, contextPronouns)))
	if recentMessages > 3 {
		score += 0.2
	}
	return min(score, 1)
}

func reasoningScore(lower string) float64 {
	score := 0.2
	for _, p := range reasoningPatterns {
		if strings.Contains(lower, p) {
			score += 0.15
		}
	}
	if strings.Contains(lower, "because") || strings.Contains(lower, "therefore") || strings.Contains(lower, "thus") {
		score += 0.1
	}
	if strings.Count(lower, " if ") > 1 {
		score += 0.2
	}
	return min(score, 1)
}

func sentenceCount(text string) int {
	n := len(strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}))
	if n == 0 && strings.TrimSpace(text) != "" {
		return 1
	}
	return n
}

var (
	baseSteps    = map[Level]int{Trivial: 1, Simple: 2, Moderate: 4, Complex: 7, VeryComplex: 12}
	systemTokens = map[Level]int{Trivial: 50, Simple: 100, Moderate: 150, Complex: 200, VeryComplex: 300}
	outputTokens = map[Level]int{Trivial: 50, Simple: 150, Moderate: 300, Complex: 500, VeryComplex: 1000}
)

func estimateTokens(level Level, f Factors, text string) TokenEstimate {
	input := max(len(text)/4, 1) + int(f.Context*300) + systemTokens[level]
	output := int(float64(outputTokens[level]+int(f.Domain*200)) * 1.2)
	return TokenEstimate{Input: input, Output: output, Total: input + output}
}

func confidence(f Factors) float64 {
	avg := f.Average()
	variance := 0.0
	for _, v := range f.values() {
		variance += (v - avg) * (v - avg)
	}
	variance /= 5
	return min(max(1-min(math.Sqrt(variance), 0.5), 0.5), 0.95)
}
