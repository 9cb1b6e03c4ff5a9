package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/search"
)

// Validation constants.
const (
	minQuestionLength  = 3
	maxQuestionLength  = 10000
	maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies
)

// startResearchRequest is the JSON request body for starting a research run.
type startResearchRequest struct {
	Question   string   `json:"question" validate:"required,min=3,max=10000"`
	Occupation string   `json:"occupation,omitempty" validate:"omitempty,max=200"`
	Sources    []string `json:"sources,omitempty" validate:"omitempty,max=6,dive,required"`
}

// startResearchResponse is the JSON response for a completed research run.
type startResearchResponse struct {
	QuestionID        string          `json:"question_id"`
	Question          string          `json:"question"`
	OptimizedQuestion string          `json:"optimized_question"`
	Keywords          []string        `json:"keywords"`
	SearchQuery       string          `json:"search_query"`
	SourceCounts      map[string]int  `json:"source_counts"`
	TotalPapers       int             `json:"total_papers"`
	Papers            []*domain.Paper `json:"papers"`
	CreatedAt         time.Time       `json:"created_at"`
}

// resolveCitationsRequest is the JSON request body for resolving citations.
type resolveCitationsRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// resolveCitationsResponse is the JSON response for resolved citations.
type resolveCitationsResponse struct {
	QuestionID string          `json:"question_id"`
	Citations  []*domain.Paper `json:"citations"`
	Count      int             `json:"count"`
}

// startResearch handles POST /api/v1/research. It runs the full pipeline for
// the question, persists the outcome, and returns the selected papers.
func (s *Server) startResearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req startResearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	var requested []domain.SourceType
	for _, raw := range req.Sources {
		source := domain.SourceType(strings.ToLower(strings.TrimSpace(raw)))
		if !source.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported source: %s", raw))
			return
		}
		requested = append(requested, source)
	}

	sc, err := s.pipeline.Run(ctx, req.Question, requested)
	if err != nil {
		s.logger.Error().Err(err).Msg("pipeline run failed")
		writeDomainError(w, err)
		return
	}

	now := time.Now().UTC()
	record := &domain.ResearchRecord{
		QuestionID:        uuid.NewString(),
		Question:          sc.Question,
		OptimizedQuestion: sc.OptimizedQuestion,
		Keywords:          sc.Keywords,
		Articles:          sc.SelectedPapers,
		Occupation:        req.Occupation,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Put(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("question_id", record.QuestionID).Msg("failed to persist research record")
		writeDomainError(w, err)
		return
	}

	counts := make(map[string]int, len(sc.SourceCounts))
	for source, n := range sc.SourceCounts {
		counts[source.String()] = n
	}

	writeJSON(w, http.StatusCreated, startResearchResponse{
		QuestionID:        record.QuestionID,
		Question:          sc.Question,
		OptimizedQuestion: sc.OptimizedQuestion,
		Keywords:          sc.Keywords,
		SearchQuery:       sc.SearchQuery,
		SourceCounts:      counts,
		TotalPapers:       sc.TotalPapers(),
		Papers:            sc.SelectedPapers,
		CreatedAt:         record.CreatedAt,
	})
}

// getResearch handles GET /api/v1/research/{questionID}.
func (s *Server) getResearch(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")
	if questionID == "" {
		writeError(w, http.StatusBadRequest, "question ID is required")
		return
	}

	record, err := s.store.Get(r.Context(), questionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// resolveCitations handles POST /api/v1/research/{questionID}/citations. The
// answer text is scanned for reference markers against the record's articles;
// the resolved citations are stored on the record alongside the answer.
func (s *Server) resolveCitations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	questionID := chi.URLParam(r, "questionID")
	if questionID == "" {
		writeError(w, http.StatusBadRequest, "question ID is required")
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req resolveCitationsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	record, err := s.store.Get(ctx, questionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	scheme := search.NewMarkerScheme(record.Articles)
	citations := s.citations.Resolve(req.Answer, scheme)

	if err := s.store.SaveAnswer(ctx, questionID, req.Answer, citations); err != nil {
		s.logger.Error().Err(err).Str("question_id", questionID).Msg("failed to save answer")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resolveCitationsResponse{
		QuestionID: questionID,
		Citations:  citations,
		Count:      len(citations),
	})
}
