package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/brilliance/research-service/internal/database"
	"github.com/brilliance/research-service/internal/domain"
)

// Compile-time interface verification.
var _ ResearchStore = (*PgStore)(nil)

// PgStore is a PostgreSQL implementation of ResearchStore. Keywords, articles
// and citations are stored as jsonb columns.
type PgStore struct {
	db database.DBTX
}

// NewPgStore creates a new PostgreSQL research store.
func NewPgStore(db database.DBTX) *PgStore {
	return &PgStore{db: db}
}

// Put inserts or replaces the record for record.QuestionID.
func (s *PgStore) Put(ctx context.Context, record *domain.ResearchRecord) error {
	if record == nil {
		return domain.NewValidationError("record", "record cannot be nil")
	}
	if record.QuestionID == "" {
		return domain.NewValidationError("questionId", "question ID is required")
	}

	keywordsJSON, err := json.Marshal(record.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	articlesJSON, err := json.Marshal(record.Articles)
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}
	citationsJSON, err := json.Marshal(record.Citations)
	if err != nil {
		return fmt.Errorf("failed to marshal citations: %w", err)
	}

	now := time.Now().UTC()
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query := `
		INSERT INTO research_records (
			question_id, question, optimized_question, keywords,
			articles, occupation, answer, citations,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (question_id) DO UPDATE SET
			question = EXCLUDED.question,
			optimized_question = EXCLUDED.optimized_question,
			keywords = EXCLUDED.keywords,
			articles = EXCLUDED.articles,
			occupation = EXCLUDED.occupation,
			answer = EXCLUDED.answer,
			citations = EXCLUDED.citations,
			updated_at = EXCLUDED.updated_at`

	_, err = s.db.Exec(ctx, query,
		record.QuestionID, record.Question, record.OptimizedQuestion, keywordsJSON,
		articlesJSON, record.Occupation, record.Answer, citationsJSON,
		createdAt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to put research record: %w", err)
	}
	return nil
}

// Get returns the record for the given question ID.
func (s *PgStore) Get(ctx context.Context, questionID string) (*domain.ResearchRecord, error) {
	query := `
		SELECT question_id, question, optimized_question, keywords,
			articles, occupation, answer, citations,
			created_at, updated_at
		FROM research_records
		WHERE question_id = $1`

	row := s.db.QueryRow(ctx, query, questionID)

	var (
		record        domain.ResearchRecord
		keywordsJSON  []byte
		articlesJSON  []byte
		citationsJSON []byte
	)
	err := row.Scan(
		&record.QuestionID, &record.Question, &record.OptimizedQuestion, &keywordsJSON,
		&articlesJSON, &record.Occupation, &record.Answer, &citationsJSON,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("research record", questionID)
		}
		return nil, fmt.Errorf("failed to get research record: %w", err)
	}

	if err := json.Unmarshal(keywordsJSON, &record.Keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}
	if err := json.Unmarshal(articlesJSON, &record.Articles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal articles: %w", err)
	}
	if len(citationsJSON) > 0 {
		if err := json.Unmarshal(citationsJSON, &record.Citations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal citations: %w", err)
		}
	}

	return &record, nil
}

// SaveAnswer stores the answer and citations on an existing record.
func (s *PgStore) SaveAnswer(ctx context.Context, questionID, answer string, citations []*domain.Paper) error {
	citationsJSON, err := json.Marshal(citations)
	if err != nil {
		return fmt.Errorf("failed to marshal citations: %w", err)
	}

	query := `
		UPDATE research_records
		SET answer = $2, citations = $3, updated_at = $4
		WHERE question_id = $1`

	tag, err := s.db.Exec(ctx, query, questionID, answer, citationsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("research record", questionID)
	}
	return nil
}
