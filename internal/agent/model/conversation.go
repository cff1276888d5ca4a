package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is the immutable per-turn input. The pipeline passes it by pointer
// and never mutates it; a merged message is a new value.
type Message struct {
	ID         uuid.UUID `json:"id"`
	RoomID     uuid.UUID `json:"room_id"`
	EntityID   uuid.UUID `json:"entity_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	Similarity *float64  `json:"similarity,omitempty"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// NewMessage builds a message with a fresh identity.
func NewMessage(roomID, entityID uuid.UUID, text string) *Message {
	return &Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		EntityID:  entityID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// WithText returns a copy of m carrying text as its content.
func (m *Message) WithText(text string) *Message {
	cp := *m
	cp.Text = text
	return &cp
}

// MemoryQuery selects stored messages for a room, newest last.
type MemoryQuery struct {
	RoomID uuid.UUID
	Count  int
}

type MemoryRepository interface {
	// AddMemory appends a message to the room history
	AddMemory(ctx context.Context, msg *Message) error

	// GetMemories returns up to query.Count most recent messages of the room
	GetMemories(ctx context.Context, query MemoryQuery) ([]*Message, error)
}

// EmbeddingQueue accepts messages whose embeddings should be generated.
// Higher priority is served first.
type EmbeddingQueue interface {
	QueueEmbeddingGeneration(ctx context.Context, msg *Message, priority int) error
}

// EmbeddingJob is the queued request for one message embedding.
type EmbeddingJob struct {
	MessageID uuid.UUID `json:"message_id"`
	RoomID    uuid.UUID `json:"room_id"`
	Text      string    `json:"text"`
	Priority  int       `json:"priority"`
	QueuedAt  time.Time `json:"queued_at"`
}
