package search

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare_OptimizesAndExtracts(t *testing.T) {
	client := &stubLLM{responses: []string{
		"What are recent advances in CRISPR gene editing?",
		`{"keywords": ["CRISPR", "gene editing", "Cas9", "genome", "therapy", "delivery"]}`,
	}}
	preparer := NewPreparer(client, 4, zerolog.Nop(), nil)

	prepared := preparer.Prepare(context.Background(), "whats new with crispr")

	assert.Equal(t, "What are recent advances in CRISPR gene editing?", prepared.OptimizedQuestion)
	// Keywords are clamped to the configured maximum.
	assert.Equal(t, []string{"CRISPR", "gene editing", "Cas9", "genome"}, prepared.Keywords)
	assert.Equal(t, "CRISPR gene editing Cas9 genome", prepared.SearchQuery)
	require.Len(t, client.calls, 2)
	assert.True(t, client.calls[1].JSONMode)
}

func TestPrepare_LLMFailureFallsBack(t *testing.T) {
	client := &stubLLM{err: assert.AnError}
	preparer := NewPreparer(client, 4, zerolog.Nop(), nil)

	prepared := preparer.Prepare(context.Background(), "whats new with crispr")

	assert.Equal(t, "whats new with crispr", prepared.OptimizedQuestion)
	assert.Equal(t, []string{"whats new with crispr"}, prepared.Keywords)
	assert.Equal(t, "whats new with crispr", prepared.SearchQuery)
}

func TestPrepare_BadKeywordJSONFallsBack(t *testing.T) {
	client := &stubLLM{responses: []string{
		"Optimized question",
		"here are your keywords: crispr",
	}}
	preparer := NewPreparer(client, 4, zerolog.Nop(), nil)

	prepared := preparer.Prepare(context.Background(), "original")

	assert.Equal(t, "Optimized question", prepared.OptimizedQuestion)
	assert.Equal(t, []string{"Optimized question"}, prepared.Keywords)
}

func TestPrepare_EmptyKeywordListFallsBack(t *testing.T) {
	client := &stubLLM{responses: []string{
		"Optimized question",
		`{"keywords": ["", "  "]}`,
	}}
	preparer := NewPreparer(client, 4, zerolog.Nop(), nil)

	prepared := preparer.Prepare(context.Background(), "original")
	assert.Equal(t, []string{"Optimized question"}, prepared.Keywords)
}
