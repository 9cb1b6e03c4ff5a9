package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/sources"
	"github.com/brilliance/research-service/internal/sources/unpaywall"
)

type stubAdapter struct {
	source  domain.SourceType
	papers  []*domain.Paper
	err     error
	delay   time.Duration
	enabled bool
}

func (s *stubAdapter) Search(ctx context.Context, query string, maxResults int) ([]*domain.Paper, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.papers, nil
}

func (s *stubAdapter) SourceType() domain.SourceType { return s.source }
func (s *stubAdapter) Name() string                  { return s.source.String() }
func (s *stubAdapter) IsEnabled() bool               { return s.enabled }

func stubRegistry(adapters ...*stubAdapter) *sources.Registry {
	registry := sources.NewRegistry()
	for _, a := range adapters {
		registry.Register(a)
	}
	return registry
}

func TestAggregate_MergesResultsBySource(t *testing.T) {
	registry := stubRegistry(
		&stubAdapter{source: domain.SourceArXiv, enabled: true, papers: []*domain.Paper{
			{Title: "arxiv one", Source: domain.SourceArXiv},
			{Title: "arxiv two", Source: domain.SourceArXiv},
		}},
		&stubAdapter{source: domain.SourcePubMed, enabled: true, papers: []*domain.Paper{
			{Title: "pubmed one", Source: domain.SourcePubMed},
		}},
	)

	agg := NewAggregator(registry, nil, AggregatorConfig{}, zerolog.Nop(), nil)
	bySource := agg.Aggregate(context.Background(), "quantum", nil)

	require.Len(t, bySource, 2)
	assert.Len(t, bySource[domain.SourceArXiv], 2)
	assert.Len(t, bySource[domain.SourcePubMed], 1)
}

func TestAggregate_FailingSourceIsIsolated(t *testing.T) {
	registry := stubRegistry(
		&stubAdapter{source: domain.SourceArXiv, enabled: true, err: errors.New("boom")},
		&stubAdapter{source: domain.SourceOpenAlex, enabled: true, papers: []*domain.Paper{
			{Title: "survivor", Source: domain.SourceOpenAlex},
		}},
	)

	agg := NewAggregator(registry, nil, AggregatorConfig{}, zerolog.Nop(), nil)
	bySource := agg.Aggregate(context.Background(), "quantum", nil)

	require.Len(t, bySource, 1)
	assert.Equal(t, "survivor", bySource[domain.SourceOpenAlex][0].Title)
}

func TestAggregate_SlowSourceTimesOut(t *testing.T) {
	registry := stubRegistry(
		&stubAdapter{source: domain.SourceCore, enabled: true, delay: time.Second, papers: []*domain.Paper{
			{Title: "too late", Source: domain.SourceCore},
		}},
		&stubAdapter{source: domain.SourceArXiv, enabled: true, papers: []*domain.Paper{
			{Title: "fast", Source: domain.SourceArXiv},
		}},
	)

	agg := NewAggregator(registry, nil, AggregatorConfig{PerSourceTimeout: 20 * time.Millisecond}, zerolog.Nop(), nil)
	bySource := agg.Aggregate(context.Background(), "quantum", nil)

	require.Len(t, bySource, 1)
	assert.Contains(t, bySource, domain.SourceArXiv)
}

func TestAggregate_RequestedSubset(t *testing.T) {
	registry := stubRegistry(
		&stubAdapter{source: domain.SourceArXiv, enabled: true, papers: []*domain.Paper{{Title: "a", Source: domain.SourceArXiv}}},
		&stubAdapter{source: domain.SourcePubMed, enabled: true, papers: []*domain.Paper{{Title: "p", Source: domain.SourcePubMed}}},
	)

	agg := NewAggregator(registry, nil, AggregatorConfig{}, zerolog.Nop(), nil)
	bySource := agg.Aggregate(context.Background(), "quantum", []domain.SourceType{domain.SourcePubMed})

	require.Len(t, bySource, 1)
	assert.Contains(t, bySource, domain.SourcePubMed)
}

func TestAggregate_DisabledAdapterSkipped(t *testing.T) {
	registry := stubRegistry(
		&stubAdapter{source: domain.SourceCore, enabled: false, papers: []*domain.Paper{{Title: "c", Source: domain.SourceCore}}},
	)

	agg := NewAggregator(registry, nil, AggregatorConfig{}, zerolog.Nop(), nil)
	bySource := agg.Aggregate(context.Background(), "quantum", nil)
	assert.Empty(t, bySource)
}

func TestAggregate_EnrichesDOIsThroughUnpaywall(t *testing.T) {
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"doi": "10.1000/a",
			"title": "Open access copy",
			"is_oa": true,
			"best_oa_location": {"url": "https://oa.example/a", "url_for_pdf": "https://oa.example/a.pdf"}
		}`))
	}))
	defer server.Close()

	resolver := unpaywall.New(unpaywall.Config{
		BaseURL: server.URL,
		Email:   "dev@example.com",
		Enabled: true,
	})

	registry := stubRegistry(
		&stubAdapter{source: domain.SourceArXiv, enabled: true, papers: []*domain.Paper{
			{Title: "a", Source: domain.SourceArXiv, DOI: "10.1000/a"},
			{Title: "a dup", Source: domain.SourceArXiv, DOI: "https://doi.org/10.1000/A"},
		}},
	)

	agg := NewAggregator(registry, resolver, AggregatorConfig{}, zerolog.Nop(), nil)
	bySource := agg.Aggregate(context.Background(), "quantum", nil)

	// The duplicate DOI is collected once, case-insensitively.
	require.Len(t, requested, 1)
	require.Len(t, bySource[domain.SourceUnpaywall], 1)
	oa := bySource[domain.SourceUnpaywall][0]
	assert.Equal(t, "Open access copy", oa.Title)
	assert.True(t, oa.OpenAccess)
	assert.Equal(t, "https://oa.example/a.pdf", oa.PDFURL)
}

func TestAggregate_NoUnpaywallEntryWithoutDOIs(t *testing.T) {
	resolver := unpaywall.New(unpaywall.Config{Email: "dev@example.com", Enabled: true})
	registry := stubRegistry(
		&stubAdapter{source: domain.SourceArXiv, enabled: true, papers: []*domain.Paper{
			{Title: "no doi", Source: domain.SourceArXiv},
		}},
	)

	agg := NewAggregator(registry, resolver, AggregatorConfig{}, zerolog.Nop(), nil)
	bySource := agg.Aggregate(context.Background(), "quantum", nil)
	assert.NotContains(t, bySource, domain.SourceUnpaywall)
}
