package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brilliance/research-service/internal/domain"
)

func newTestRecord() *domain.ResearchRecord {
	return &domain.ResearchRecord{
		QuestionID:        "q-123",
		Question:          "How do vaccines work?",
		OptimizedQuestion: "mechanisms of vaccine-induced immunity",
		Keywords:          []string{"vaccine", "immunity"},
		Articles: []*domain.Paper{
			{Title: "Vaccine immunology", Source: domain.SourcePubMed},
		},
	}
}

func TestMemoryStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, newTestRecord()))

	got, err := s.Get(ctx, "q-123")
	require.NoError(t, err)
	assert.Equal(t, "How do vaccines work?", got.Question)
	assert.Equal(t, []string{"vaccine", "immunity"}, got.Keywords)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestMemoryStore_GetNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	var notFound *domain.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestMemoryStore_PutValidation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Put(ctx, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	err = s.Put(ctx, &domain.ResearchRecord{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestMemoryStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, newTestRecord()))

	updated := newTestRecord()
	updated.Question = "updated question"
	require.NoError(t, s.Put(ctx, updated))

	got, err := s.Get(ctx, "q-123")
	require.NoError(t, err)
	assert.Equal(t, "updated question", got.Question)
}

func TestMemoryStore_SaveAnswer(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, newTestRecord()))

	citations := []*domain.Paper{{Title: "cited", Source: domain.SourceArXiv}}
	require.NoError(t, s.SaveAnswer(ctx, "q-123", "the answer [A1]", citations))

	got, err := s.Get(ctx, "q-123")
	require.NoError(t, err)
	assert.Equal(t, "the answer [A1]", got.Answer)
	require.Len(t, got.Citations, 1)
	assert.Equal(t, "cited", got.Citations[0].Title)
}

func TestMemoryStore_SaveAnswerNotFound(t *testing.T) {
	s := NewMemoryStore()

	err := s.SaveAnswer(context.Background(), "missing", "answer", nil)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, newTestRecord()))

	got, err := s.Get(ctx, "q-123")
	require.NoError(t, err)
	got.Question = "mutated"

	again, err := s.Get(ctx, "q-123")
	require.NoError(t, err)
	assert.Equal(t, "How do vaccines work?", again.Question)
}
