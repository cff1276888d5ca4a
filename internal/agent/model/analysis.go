package model

import "github.com/Chative-core-poc-v1/preflight/internal/agent/nlp"

// AnalysisKey is the TurnState.Data key holding the *Analysis of the message.
const AnalysisKey = "phase0"

// Analysis aggregates whatever the preprocessing stages produced for one
// message. A stage that was disabled or failed leaves its fields zero.
type Analysis struct {
	Language        string                `json:"language,omitempty"`
	Intent          nlp.Intent            `json:"intent,omitempty"`
	Sentiment       nlp.Sentiment         `json:"sentiment,omitempty"`
	Tone            nlp.Tone              `json:"tone,omitempty"`
	Topics          []string              `json:"topics,omitempty"`
	Keywords        []string              `json:"keywords,omitempty"`
	Entities        []string              `json:"entities,omitempty"`
	Complexity      *nlp.Complexity       `json:"complexity,omitempty"`
	Detections      *nlp.Detections       `json:"detections,omitempty"`
	Phonetics       *nlp.PhoneticAnalysis `json:"phonetics,omitempty"`
	EmbeddingQueued bool                  `json:"embedding_queued"`
	Ambiguous       bool                  `json:"ambiguity"`

	Completed []string `json:"completed,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
	Failed    []string `json:"failed,omitempty"`
}

func (a *Analysis) Classification() *nlp.Classification {
	if a.Intent == "" {
		return nil
	}
	return &nlp.Classification{Intent: a.Intent, Sentiment: a.Sentiment, Tone: a.Tone}
}
