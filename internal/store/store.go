// Package store persists research records. Two implementations are provided:
// an in-memory store for development and a PostgreSQL store for production,
// selected by configuration at startup.
package store

import (
	"context"

	"github.com/brilliance/research-service/internal/domain"
)

// ResearchStore persists research records keyed by question ID.
//
// Implementations are safe for concurrent use. Get returns a
// domain.NotFoundError when no record exists for the given ID.
type ResearchStore interface {
	// Put inserts or replaces the record for record.QuestionID.
	Put(ctx context.Context, record *domain.ResearchRecord) error

	// Get returns the record for the given question ID.
	Get(ctx context.Context, questionID string) (*domain.ResearchRecord, error)

	// SaveAnswer stores the generated answer and its resolved citations on an
	// existing record.
	SaveAnswer(ctx context.Context, questionID, answer string, citations []*domain.Paper) error
}
