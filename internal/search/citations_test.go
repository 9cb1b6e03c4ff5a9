package search

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brilliance/research-service/internal/domain"
)

func citationScheme() *MarkerScheme {
	return NewMarkerScheme([]*domain.Paper{
		{Title: "A-one", Source: domain.SourceArXiv},
		{Title: "A-two", Source: domain.SourceArXiv},
		{Title: "P-one", Source: domain.SourcePubMed},
		{Title: "S-one", Source: domain.SourceSemanticScholar},
	})
}

func TestResolve_ReferencesSection(t *testing.T) {
	resolver := NewCitationResolver(zerolog.Nop(), nil)
	answer := `The findings [A2] suggest improvements over earlier work [P1].

REFERENCES:
[A2] second arxiv paper
[P1] the pubmed paper
[A1] first arxiv paper`

	citations := resolver.Resolve(answer, citationScheme())
	require.Len(t, citations, 3)
	// Order of first appearance within the references section.
	assert.Equal(t, "A-two", citations[0].Title)
	assert.Equal(t, "P-one", citations[1].Title)
	assert.Equal(t, "A-one", citations[2].Title)
}

func TestResolve_WholeAnswerWhenNoSection(t *testing.T) {
	resolver := NewCitationResolver(zerolog.Nop(), nil)
	answer := "Results [S1] align with prior work [A1], and [S1] is the stronger evidence."

	citations := resolver.Resolve(answer, citationScheme())
	require.Len(t, citations, 2)
	assert.Equal(t, "S-one", citations[0].Title)
	assert.Equal(t, "A-one", citations[1].Title)
}

func TestResolve_IgnoresOutOfRangeMarkers(t *testing.T) {
	resolver := NewCitationResolver(zerolog.Nop(), nil)
	answer := "REFERENCES\n[A9] does not exist\n[P1] exists"

	citations := resolver.Resolve(answer, citationScheme())
	require.Len(t, citations, 1)
	assert.Equal(t, "P-one", citations[0].Title)
}

func TestResolve_FallbackWhenNothingResolves(t *testing.T) {
	resolver := NewCitationResolver(zerolog.Nop(), nil)
	scheme := citationScheme()

	citations := resolver.Resolve("No markers anywhere in this answer.", scheme)
	assert.Equal(t, scheme.Selected(), citations)
}

func TestResolve_FallbackIsCapped(t *testing.T) {
	papers := make([]*domain.Paper, 15)
	for i := range papers {
		papers[i] = &domain.Paper{Title: "p", Source: domain.SourceArXiv}
	}
	resolver := NewCitationResolver(zerolog.Nop(), nil)

	citations := resolver.Resolve("nothing cited", NewMarkerScheme(papers))
	assert.Len(t, citations, DefaultCitationFallback)
}

func TestResolve_CaseInsensitiveHeading(t *testing.T) {
	resolver := NewCitationResolver(zerolog.Nop(), nil)
	answer := "Body text [A1] ignored? No: section only.\n\nReferences\n[A2] cited"

	citations := resolver.Resolve(answer, citationScheme())
	require.Len(t, citations, 1)
	assert.Equal(t, "A-two", citations[0].Title)
}
