package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brilliance/research-service/internal/domain"
)

func TestFormatPaperContext(t *testing.T) {
	scheme := NewMarkerScheme([]*domain.Paper{
		{
			Title:         "Attention Is All You Need",
			Summary:       "We propose the Transformer.",
			Authors:       []string{"Vaswani", "Shazeer", "Parmar", "Uszkoreit"},
			Published:     "2017-06-12",
			Source:        domain.SourceArXiv,
			URL:           "https://arxiv.org/abs/1706.03762",
			CitationCount: 90000,
		},
		{
			Title:     "A clinical trial",
			Summary:   "Trial abstract.",
			Authors:   []string{"Smith J"},
			Published: "2021 Mar",
			Source:    domain.SourcePubMed,
			Journal:   "The Lancet",
			DOI:       "10.1000/lancet.1",
			URL:       "https://pubmed.ncbi.nlm.nih.gov/12345/",
		},
	})

	out := FormatPaperContext(scheme)

	assert.Contains(t, out, "arXiv papers:")
	assert.Contains(t, out, "PubMed papers:")
	assert.Contains(t, out, `[A1] "Attention Is All You Need" - Vaswani, Shazeer, Parmar, et al.`)
	assert.Contains(t, out, `[P1] "A clinical trial" - Smith J`)
	assert.Contains(t, out, "Journal: The Lancet (2021 Mar)")
	assert.Contains(t, out, "Published: 2017-06-12")
	assert.Contains(t, out, "DOI: 10.1000/lancet.1")
	assert.Contains(t, out, "Citations: 90000")
	assert.Contains(t, out, "URL: https://arxiv.org/abs/1706.03762")

	// Sources are grouped in first-appearance order.
	require.Less(t, strings.Index(out, "arXiv papers:"), strings.Index(out, "PubMed papers:"))
}

func TestFormatPaperContext_TruncatesLongSummaries(t *testing.T) {
	long := strings.Repeat("word ", 400)
	scheme := NewMarkerScheme([]*domain.Paper{
		{Title: "Long", Summary: long, Source: domain.SourceCore},
	})

	out := FormatPaperContext(scheme)
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, long)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "cut at...", truncate("cut at word boundary here", 10))
	assert.Equal(t, "abcdefghij...", truncate("abcdefghijkl", 10))
}
