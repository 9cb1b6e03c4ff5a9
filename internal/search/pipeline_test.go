package search

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brilliance/research-service/internal/domain"
)

func pipelineFixture(llmStub *stubLLM, adapters ...*stubAdapter) (*Pipeline, *stubLLM) {
	if llmStub == nil {
		llmStub = &stubLLM{responses: []string{
			"optimized question",
			`{"keywords": ["neural", "networks"]}`,
		}}
	}
	preparer := NewPreparer(llmStub, 0, zerolog.Nop(), nil)
	aggregator := NewAggregator(stubRegistry(adapters...), nil, AggregatorConfig{}, zerolog.Nop(), nil)
	selector := NewSelector(llmStub, zerolog.Nop(), nil)
	return NewPipeline(preparer, aggregator, selector, PipelineConfig{MaxContextPapers: 2}, zerolog.Nop(), nil), llmStub
}

func TestPipeline_HeuristicRun(t *testing.T) {
	pipeline, _ := pipelineFixture(nil,
		&stubAdapter{source: domain.SourceArXiv, enabled: true, papers: []*domain.Paper{
			{Title: "Neural networks for physics", Summary: "Deep neural networks.", Source: domain.SourceArXiv, Published: "2024"},
			{Title: "Unrelated botany", Summary: "Plants.", Source: domain.SourceArXiv, Published: "2024"},
		}},
		&stubAdapter{source: domain.SourcePubMed, enabled: true, papers: []*domain.Paper{
			{Title: "Clinical neural networks", Summary: "Networks in medicine.", Source: domain.SourcePubMed, Published: "2023"},
		}},
	)

	sc, err := pipeline.Run(context.Background(), "How do neural networks work?", nil)
	require.NoError(t, err)

	assert.Equal(t, "How do neural networks work?", sc.Question)
	assert.Equal(t, "optimized question", sc.OptimizedQuestion)
	assert.Equal(t, []string{"neural", "networks"}, sc.Keywords)
	assert.Equal(t, "neural networks", sc.SearchQuery)
	assert.Equal(t, 3, sc.TotalPapers())
	assert.Equal(t, 2, sc.SourceCounts[domain.SourceArXiv])
	assert.Equal(t, 1, sc.SourceCounts[domain.SourcePubMed])
	require.Len(t, sc.SelectedPapers, 2)
	for _, p := range sc.SelectedPapers {
		assert.NotEqual(t, "Unrelated botany", p.Title)
	}
}

func TestPipeline_LLMStrategyUsesSelector(t *testing.T) {
	llmStub := &stubLLM{responses: []string{
		"optimized question",
		`{"keywords": ["neural"]}`,
		`{"selected_papers": ["paper_2", "paper_0"]}`,
	}}
	preparer := NewPreparer(llmStub, 0, zerolog.Nop(), nil)
	aggregator := NewAggregator(stubRegistry(
		&stubAdapter{source: domain.SourceArXiv, enabled: true, papers: []*domain.Paper{
			{Title: "first", Source: domain.SourceArXiv},
			{Title: "second", Source: domain.SourceArXiv},
			{Title: "third", Source: domain.SourceArXiv},
		}},
	), nil, AggregatorConfig{}, zerolog.Nop(), nil)
	selector := NewSelector(llmStub, zerolog.Nop(), nil)
	pipeline := NewPipeline(preparer, aggregator, selector, PipelineConfig{
		MaxContextPapers: 2,
		RankStrategy:     StrategyLLM,
	}, zerolog.Nop(), nil)

	sc, err := pipeline.Run(context.Background(), "question", nil)
	require.NoError(t, err)

	require.Len(t, sc.SelectedPapers, 2)
	assert.Equal(t, "third", sc.SelectedPapers[0].Title)
	assert.Equal(t, "first", sc.SelectedPapers[1].Title)
	// optimize, keywords, selection
	assert.Len(t, llmStub.calls, 3)
}

func TestPipeline_NoCandidates(t *testing.T) {
	pipeline, _ := pipelineFixture(nil,
		&stubAdapter{source: domain.SourceArXiv, enabled: true, err: errors.New("down")},
	)

	sc, err := pipeline.Run(context.Background(), "question", nil)
	require.NoError(t, err)
	assert.Empty(t, sc.SelectedPapers)
	assert.Empty(t, sc.PapersBySource)
	assert.Zero(t, sc.TotalPapers())
}

func TestPipeline_CanceledContext(t *testing.T) {
	pipeline, _ := pipelineFixture(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Run(ctx, "question", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_CandidatesFlattenedInCanonicalOrder(t *testing.T) {
	llmStub := &stubLLM{responses: []string{
		"optimized",
		`{"keywords": ["x"]}`,
		`{"selected_papers": ["paper_0", "paper_1"]}`,
	}}
	preparer := NewPreparer(llmStub, 0, zerolog.Nop(), nil)
	// PubMed registered first; canonical order still puts arXiv candidates first.
	aggregator := NewAggregator(stubRegistry(
		&stubAdapter{source: domain.SourcePubMed, enabled: true, papers: []*domain.Paper{
			{Title: "pubmed paper", Source: domain.SourcePubMed},
		}},
		&stubAdapter{source: domain.SourceArXiv, enabled: true, papers: []*domain.Paper{
			{Title: "arxiv paper", Source: domain.SourceArXiv},
		}},
	), nil, AggregatorConfig{}, zerolog.Nop(), nil)
	selector := NewSelector(llmStub, zerolog.Nop(), nil)
	pipeline := NewPipeline(preparer, aggregator, selector, PipelineConfig{
		MaxContextPapers: 2,
		RankStrategy:     StrategyLLM,
	}, zerolog.Nop(), nil)

	sc, err := pipeline.Run(context.Background(), "question", nil)
	require.NoError(t, err)
	require.Len(t, sc.SelectedPapers, 2)
	assert.Equal(t, "arxiv paper", sc.SelectedPapers[0].Title)
	assert.Equal(t, "pubmed paper", sc.SelectedPapers[1].Title)
}
