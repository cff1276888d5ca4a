package executor

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
)

// MemoryResultStore keeps action results in process memory.
type MemoryResultStore struct {
	mu      sync.RWMutex
	results map[uuid.UUID][]model.ActionResult
}

func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{results: make(map[uuid.UUID][]model.ActionResult)}
}

func (s *MemoryResultStore) SaveActionResults(_ context.Context, messageID uuid.UUID, results []model.ActionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[messageID] = slices.Clone(results)
	return nil
}

func (s *MemoryResultStore) LoadActionResults(_ context.Context, messageID uuid.UUID) ([]model.ActionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.results[messageID]), nil
}
