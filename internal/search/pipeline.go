package search

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/observability"
)

// Ranking strategies.
const (
	StrategyHeuristic = "heuristic"
	StrategyLLM       = "llm"
)

// PipelineConfig configures the research pipeline.
type PipelineConfig struct {
	// MaxContextPapers is how many papers end up in the search context.
	MaxContextPapers int

	// OverallTimeout bounds the whole pipeline run.
	OverallTimeout time.Duration

	// RankStrategy is "heuristic" or "llm".
	RankStrategy string
}

func (c *PipelineConfig) applyDefaults() {
	if c.MaxContextPapers <= 0 {
		c.MaxContextPapers = 10
	}
	if c.OverallTimeout <= 0 {
		c.OverallTimeout = 60 * time.Second
	}
	if c.RankStrategy == "" {
		c.RankStrategy = StrategyHeuristic
	}
}

// Pipeline wires query preparation, source fan-out, and relevance ranking
// into a single run. Search-level failures degrade rather than abort: the
// pipeline returns an error only when the caller's context is done.
type Pipeline struct {
	preparer   *Preparer
	aggregator *Aggregator
	selector   *Selector
	config     PipelineConfig
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// NewPipeline creates a Pipeline. The selector may be nil when the heuristic
// strategy is configured; metrics may be nil.
func NewPipeline(preparer *Preparer, aggregator *Aggregator, selector *Selector, cfg PipelineConfig, logger zerolog.Logger, metrics *observability.Metrics) *Pipeline {
	cfg.applyDefaults()
	return &Pipeline{
		preparer:   preparer,
		aggregator: aggregator,
		selector:   selector,
		config:     cfg,
		logger:     observability.ComponentLogger(logger, "pipeline"),
		metrics:    metrics,
	}
}

// Run executes the pipeline for one question and returns the populated
// search context.
func (p *Pipeline) Run(ctx context.Context, question string, requested []domain.SourceType) (*domain.SearchContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.OverallTimeout)
	defer cancel()

	start := time.Now()
	if p.metrics != nil {
		p.metrics.QuestionsProcessed.Inc()
	}

	prepared := p.preparer.Prepare(ctx, question)

	bySource := p.aggregator.Aggregate(ctx, prepared.SearchQuery, requested)

	counts := make(map[domain.SourceType]int, len(bySource))
	// Canonical source order keeps the flattened candidate list stable.
	var candidates []*domain.Paper
	for _, source := range domain.AllSourceTypes {
		papers := bySource[source]
		if len(papers) == 0 {
			continue
		}
		counts[source] = len(papers)
		candidates = append(candidates, papers...)
	}

	selected := p.selectPapers(ctx, candidates, question, prepared)

	elapsed := time.Since(start)
	if p.metrics != nil {
		p.metrics.PipelineDuration.Observe(elapsed.Seconds())
	}

	p.logger.Info().
		Str("question", question).
		Int("candidates", len(candidates)).
		Int("selected", len(selected)).
		Dur("elapsed", elapsed).
		Msg("pipeline finished")

	return &domain.SearchContext{
		Question:          question,
		OptimizedQuestion: prepared.OptimizedQuestion,
		Keywords:          prepared.Keywords,
		SearchQuery:       prepared.SearchQuery,
		PapersBySource:    bySource,
		SelectedPapers:    selected,
		SourceCounts:      counts,
		Duration:          elapsed,
	}, nil
}

func (p *Pipeline) selectPapers(ctx context.Context, candidates []*domain.Paper, question string, prepared PreparedQuery) []*domain.Paper {
	if len(candidates) == 0 {
		return []*domain.Paper{}
	}

	if p.config.RankStrategy == StrategyLLM && p.selector != nil {
		return p.selector.Select(ctx, candidates, question, p.config.MaxContextPapers)
	}

	query := prepared.SearchQuery
	if query == "" {
		query = question
	}
	return Rank(candidates, query, p.config.MaxContextPapers)
}
