// Package search implements the research pipeline: query preparation,
// concurrent source fan-out, relevance ranking, paper selection, and
// citation resolution over a shared reference marker scheme.
package search

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/brilliance/research-service/internal/llm"
	"github.com/brilliance/research-service/internal/observability"
)

// DefaultMaxKeywords caps how many keywords are taken from the extractor.
const DefaultMaxKeywords = 4

const optimizeSystemPrompt = `You are a research librarian. Rewrite the user's question as a single concise research question optimized for searching academic databases. Preserve the technical meaning. Respond with the rewritten question only, no preamble.`

const keywordsSystemPrompt = `You extract search keywords from research questions. Respond with a JSON object of the form {"keywords": ["keyword1", "keyword2"]} containing the most specific search terms for academic databases, ordered by importance. Return no more than 6 keywords and nothing besides the JSON object.`

// PreparedQuery is the output of query preparation.
type PreparedQuery struct {
	// OptimizedQuestion is the LLM-rewritten question, or the original
	// question when optimization failed.
	OptimizedQuestion string

	// Keywords are the extracted search terms, at most MaxKeywords of them.
	// On extraction failure this degrades to the raw question.
	Keywords []string

	// SearchQuery is the keywords joined by single spaces.
	SearchQuery string
}

// Preparer turns a raw user question into an optimized question and a
// keyword search query. Every LLM failure degrades to a usable fallback, so
// preparation itself never fails.
type Preparer struct {
	client      llm.Client
	maxKeywords int
	logger      zerolog.Logger
	metrics     *observability.Metrics
}

// NewPreparer creates a Preparer. A nil metrics is allowed.
func NewPreparer(client llm.Client, maxKeywords int, logger zerolog.Logger, metrics *observability.Metrics) *Preparer {
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}
	return &Preparer{
		client:      client,
		maxKeywords: maxKeywords,
		logger:      observability.ComponentLogger(logger, "preparer"),
		metrics:     metrics,
	}
}

// Prepare optimizes the question and extracts keywords.
func (p *Preparer) Prepare(ctx context.Context, question string) PreparedQuery {
	optimized := p.optimize(ctx, question)
	keywords := p.extractKeywords(ctx, optimized)

	if len(keywords) > p.maxKeywords {
		keywords = keywords[:p.maxKeywords]
	}

	return PreparedQuery{
		OptimizedQuestion: optimized,
		Keywords:          keywords,
		SearchQuery:       strings.Join(keywords, " "),
	}
}

// optimize rewrites the question for database search. On any failure the
// original question is returned unchanged.
func (p *Preparer) optimize(ctx context.Context, question string) string {
	p.countLLM("optimize", false)

	resp, err := p.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: optimizeSystemPrompt},
			{Role: "user", Content: question},
		},
		Temperature: 0.3,
	})
	if err != nil {
		p.countLLM("optimize", true)
		p.logger.Warn().Err(err).Msg("question optimization failed, using original question")
		return question
	}

	optimized := strings.TrimSpace(resp.Content)
	if optimized == "" {
		return question
	}
	return optimized
}

// extractKeywords asks the model for search keywords in JSON. On any failure
// the raw question becomes the single keyword.
func (p *Preparer) extractKeywords(ctx context.Context, question string) []string {
	p.countLLM("keywords", false)

	resp, err := p.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: keywordsSystemPrompt},
			{Role: "user", Content: question},
		},
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		p.countLLM("keywords", true)
		p.logger.Warn().Err(err).Msg("keyword extraction failed, falling back to raw question")
		return []string{question}
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		p.logger.Warn().Err(err).Msg("keyword response was not valid JSON, falling back to raw question")
		return []string{question}
	}

	keywords := make([]string, 0, len(parsed.Keywords))
	for _, k := range parsed.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return []string{question}
	}
	return keywords
}

func (p *Preparer) countLLM(operation string, failed bool) {
	if p.metrics == nil {
		return
	}
	if failed {
		p.metrics.LLMRequestsFailed.WithLabelValues(p.client.Provider(), operation).Inc()
		return
	}
	p.metrics.LLMRequestsTotal.WithLabelValues(p.client.Provider(), operation).Inc()
}
