package unpaywall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/sources"
)

func newTestResolver(serverURL, email string) *Resolver {
	cfg := Config{
		BaseURL:   serverURL,
		Email:     email,
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

const sampleRecord = `{
  "doi": "10.1234/oa.1",
  "doi_url": "https://doi.org/10.1234/oa.1",
  "title": "An Open Access Study",
  "journal_name": "PLOS ONE",
  "published_date": "2020-09-01",
  "is_oa": true,
  "z_authors": [
    {"given": "Marie", "family": "Curie"},
    {"name": "The Consortium"}
  ],
  "best_oa_location": {
    "url": "https://journals.plos.org/article/10.1234",
    "url_for_pdf": "https://journals.plos.org/article/file/10.1234.pdf"
  }
}`

func TestResolve_FetchesEachDOI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "researcher@example.org", r.URL.Query().Get("email"))
		switch r.URL.Path {
		case "/10.1234%2Foa.1", "/10.1234/oa.1":
			_, _ = w.Write([]byte(sampleRecord))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	resolver := newTestResolver(server.URL, "researcher@example.org")
	papers := resolver.Resolve(context.Background(), []string{
		"https://doi.org/10.1234/OA.1",
		"10.9999/missing",
	})

	require.Len(t, papers, 1)
	p := papers[0]
	assert.Equal(t, "An Open Access Study", p.Title)
	assert.Equal(t, "https://journals.plos.org/article/10.1234", p.URL)
	assert.Equal(t, []string{"Marie Curie", "The Consortium"}, p.Authors)
	assert.Equal(t, "PLOS ONE", p.Journal)
	assert.Equal(t, "10.1234/oa.1", p.DOI)
	assert.True(t, p.OpenAccess)
	assert.Equal(t, "https://journals.plos.org/article/file/10.1234.pdf", p.PDFURL)
	assert.Equal(t, domain.SourceUnpaywall, p.Source)
}

func TestResolve_DisabledWithoutEmail(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	resolver := newTestResolver(server.URL, "")
	assert.False(t, resolver.IsEnabled())

	papers := resolver.Resolve(context.Background(), []string{"10.1234/oa.1"})
	assert.Empty(t, papers)
	assert.False(t, called)
}

func TestResolve_EmptyDOIList(t *testing.T) {
	resolver := newTestResolver("http://unused", "researcher@example.org")
	assert.Empty(t, resolver.Resolve(context.Background(), nil))
}
