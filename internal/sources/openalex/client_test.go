package openalex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/sources"
)

func newTestClient(serverURL string) *Client {
	cfg := Config{
		BaseURL:   serverURL,
		Email:     "research@example.org",
		Enabled:   true,
		RateLimit: 1000,
		BurstSize: 1000,
	}
	httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
		RateLimit: 1000,
		BurstSize: 1000,
	})
	return NewWithHTTPClient(cfg, httpClient)
}

const sampleResponse = `{
  "meta": {"count": 1, "page": 1, "per_page": 10},
  "results": [
    {
      "id": "https://openalex.org/W123",
      "doi": "https://doi.org/10.1234/EXAMPLE.2023",
      "title": "Graph Neural Networks in Drug Discovery",
      "publication_date": "2023-04-02",
      "cited_by_count": 57,
      "open_access": {"is_oa": true, "oa_url": "https://example.org/oa.pdf"},
      "authorships": [
        {"author": {"display_name": "Ada Lovelace"}},
        {"author": {"display_name": "Alan Turing"}}
      ],
      "primary_location": {
        "pdf_url": "https://example.org/paper.pdf",
        "source": {"display_name": "Nature Machine Intelligence"}
      },
      "abstract_inverted_index": {
        "networks": [2],
        "Graph": [0],
        "neural": [1],
        "work.": [3]
      }
    }
  ]
}`

func TestSearch_ParsesWorks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "graph neural networks", q.Get("search"))
		assert.Equal(t, "relevance_score:desc", q.Get("sort"))
		assert.Equal(t, "has_doi:true", q.Get("filter"))
		assert.Equal(t, "research@example.org", q.Get("mailto"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	papers, err := client.Search(context.Background(), "graph neural networks", 10)
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "Graph Neural Networks in Drug Discovery", p.Title)
	assert.Equal(t, "Graph neural networks work.", p.Summary)
	assert.Equal(t, "https://doi.org/10.1234/example.2023", p.URL)
	assert.Equal(t, "10.1234/example.2023", p.DOI)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, p.Authors)
	assert.Equal(t, "2023-04-02", p.Published)
	assert.Equal(t, "Nature Machine Intelligence", p.Journal)
	assert.Equal(t, 57, p.CitationCount)
	assert.True(t, p.OpenAccess)
	assert.Equal(t, "https://example.org/paper.pdf", p.PDFURL)
	assert.Equal(t, domain.SourceOpenAlex, p.Source)
}

func TestSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := Config{BaseURL: server.URL, Enabled: true, RateLimit: 1000, BurstSize: 1000}
	httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
		RateLimit:  1000,
		BurstSize:  1000,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	client := NewWithHTTPClient(cfg, httpClient)

	_, err := client.Search(context.Background(), "anything", 10)
	require.Error(t, err)
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"nil index", nil, ""},
		{"empty index", map[string][]int{}, ""},
		{
			"repeated words",
			map[string][]int{"the": {0, 2}, "cat": {1}, "mat": {3}},
			"the cat the mat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconstructAbstract(tt.index))
		})
	}
}
