package search

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brilliance/research-service/internal/domain"
)

func candidatePapers(n int) []*domain.Paper {
	papers := make([]*domain.Paper, n)
	for i := range papers {
		papers[i] = &domain.Paper{
			Title:   string(rune('A' + i)),
			Source:  domain.SourceArXiv,
			Authors: []string{"Author"},
		}
	}
	return papers
}

func TestSelect_SkipsWhenListFits(t *testing.T) {
	client := &stubLLM{responses: []string{`{"selected_papers": []}`}}
	selector := NewSelector(client, zerolog.Nop(), nil)
	papers := candidatePapers(3)

	selected := selector.Select(context.Background(), papers, "q", 5)
	assert.Equal(t, papers, selected)
	assert.Empty(t, client.calls)
}

func TestSelect_UsesModelChoice(t *testing.T) {
	client := &stubLLM{responses: []string{`{"selected_papers": ["paper_4", "paper_0"]}`}}
	selector := NewSelector(client, zerolog.Nop(), nil)
	papers := candidatePapers(6)

	selected := selector.Select(context.Background(), papers, "q", 2)
	require.Len(t, selected, 2)
	assert.Same(t, papers[4], selected[0])
	assert.Same(t, papers[0], selected[1])
	require.Len(t, client.calls, 1)
	assert.True(t, client.calls[0].JSONMode)
}

func TestSelect_DiscardsUnknownIDsAndPads(t *testing.T) {
	client := &stubLLM{responses: []string{`{"selected_papers": ["paper_99", "bogus", "paper_2"]}`}}
	selector := NewSelector(client, zerolog.Nop(), nil)
	papers := candidatePapers(5)

	selected := selector.Select(context.Background(), papers, "q", 3)
	require.Len(t, selected, 3)
	// paper_2 survives, the rest is padded in original order.
	assert.Same(t, papers[2], selected[0])
	assert.Same(t, papers[0], selected[1])
	assert.Same(t, papers[1], selected[2])
}

func TestSelect_DeduplicatesSelection(t *testing.T) {
	client := &stubLLM{responses: []string{`{"selected_papers": ["paper_1", "paper_1", "paper_3"]}`}}
	selector := NewSelector(client, zerolog.Nop(), nil)
	papers := candidatePapers(5)

	selected := selector.Select(context.Background(), papers, "q", 2)
	require.Len(t, selected, 2)
	assert.Same(t, papers[1], selected[0])
	assert.Same(t, papers[3], selected[1])
}

func TestSelect_LLMErrorFallsBack(t *testing.T) {
	client := &stubLLM{err: assert.AnError}
	selector := NewSelector(client, zerolog.Nop(), nil)
	papers := candidatePapers(8)

	selected := selector.Select(context.Background(), papers, "q", 4)
	assert.Equal(t, papers[:4], selected)
}

func TestSelect_BadJSONFallsBack(t *testing.T) {
	client := &stubLLM{responses: []string{"I pick papers one and three"}}
	selector := NewSelector(client, zerolog.Nop(), nil)
	papers := candidatePapers(8)

	selected := selector.Select(context.Background(), papers, "q", 4)
	assert.Equal(t, papers[:4], selected)
}

func TestParsePaperID(t *testing.T) {
	idx, ok := parsePaperID("paper_12")
	assert.True(t, ok)
	assert.Equal(t, 12, idx)

	_, ok = parsePaperID("paper_")
	assert.False(t, ok)
	_, ok = parsePaperID("12")
	assert.False(t, ok)
	_, ok = parsePaperID("paper_x")
	assert.False(t, ok)
}

func TestFormatAuthors(t *testing.T) {
	assert.Equal(t, domain.DefaultAuthor, formatAuthors(nil))
	assert.Equal(t, "A, B", formatAuthors([]string{"A", "B"}))
	assert.Equal(t, "A, B, C, et al.", formatAuthors([]string{"A", "B", "C", "D"}))
}
