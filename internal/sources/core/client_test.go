package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/sources"
)

func newTestClient(serverURL string) *Client {
	cfg := Config{
		BaseURL:   serverURL,
		APIKey:    "core-key",
		Enabled:   true,
		RateLimit: 1000,
		BurstSize: 1000,
	}
	httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
		RateLimit:    1000,
		BurstSize:    1000,
		APIKey:       "Bearer core-key",
		APIKeyHeader: "Authorization",
	})
	return NewWithHTTPClient(cfg, httpClient)
}

const sampleResponse = `{
  "totalHits": 1,
  "results": [
    {
      "title": "Open Access Repositories Survey",
      "abstract": "A survey of repositories.",
      "authors": [{"name": "Grace Hopper"}],
      "publishedDate": "2021-06-30",
      "doi": "10.9999/core.1",
      "downloadUrl": "https://core.ac.uk/download/123.pdf",
      "publisher": "CORE Press",
      "repositories": [{"name": "Example University Repository"}]
    }
  ]
}`

func TestSearch_PostsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search/works", r.URL.Path)
		assert.Equal(t, "Bearer core-key", r.Header.Get("Authorization"))

		var body searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "open access", body.Query)
		assert.Equal(t, 5, body.Limit)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	papers, err := client.Search(context.Background(), "open access", 5)
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "Open Access Repositories Survey", p.Title)
	assert.Equal(t, []string{"Grace Hopper"}, p.Authors)
	assert.Equal(t, "2021-06-30", p.Published)
	assert.Equal(t, "10.9999/core.1", p.DOI)
	assert.Equal(t, "https://core.ac.uk/download/123.pdf", p.DownloadURL)
	assert.Equal(t, "Example University Repository", p.RepositoryName)
	assert.Equal(t, "CORE Press", p.Journal)
	assert.True(t, p.OpenAccess)
	assert.Equal(t, domain.SourceCore, p.Source)
}

func TestIsEnabled_RequiresAPIKey(t *testing.T) {
	assert.False(t, New(Config{Enabled: true}).IsEnabled())
	assert.False(t, New(Config{Enabled: false, APIKey: "k"}).IsEnabled())
	assert.True(t, New(Config{Enabled: true, APIKey: "k"}).IsEnabled())
}

func TestSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Search(context.Background(), "anything", 5)
	require.Error(t, err)
}
