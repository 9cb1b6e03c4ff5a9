package store

import (
	"context"
	"sync"
	"time"

	"github.com/brilliance/research-service/internal/domain"
)

// Compile-time interface verification.
var _ ResearchStore = (*MemoryStore)(nil)

// MemoryStore keeps research records in memory. Records do not survive a
// restart; it backs development setups that run without Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*domain.ResearchRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*domain.ResearchRecord),
	}
}

// Put inserts or replaces the record for record.QuestionID.
func (s *MemoryStore) Put(_ context.Context, record *domain.ResearchRecord) error {
	if record == nil {
		return domain.NewValidationError("record", "record cannot be nil")
	}
	if record.QuestionID == "" {
		return domain.NewValidationError("questionId", "question ID is required")
	}

	now := time.Now().UTC()
	stored := *record
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[stored.QuestionID] = &stored
	return nil
}

// Get returns the record for the given question ID.
func (s *MemoryStore) Get(_ context.Context, questionID string) (*domain.ResearchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[questionID]
	if !ok {
		return nil, domain.NewNotFoundError("research record", questionID)
	}
	copied := *record
	return &copied, nil
}

// SaveAnswer stores the answer and citations on an existing record.
func (s *MemoryStore) SaveAnswer(_ context.Context, questionID, answer string, citations []*domain.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[questionID]
	if !ok {
		return domain.NewNotFoundError("research record", questionID)
	}
	record.Answer = answer
	record.Citations = citations
	record.UpdatedAt = time.Now().UTC()
	return nil
}
