package unpaywall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/sources"
)

const (
	// DefaultBaseURL is the default Unpaywall API base URL.
	DefaultBaseURL = "https://api.unpaywall.org/v2"

	// DefaultRateLimit is the default rate limit.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	sourceName = "Unpaywall"
)

// Config holds configuration for the Unpaywall resolver.
type Config struct {
	// BaseURL is the Unpaywall API base URL.
	BaseURL string

	// Email is the contact address Unpaywall requires on every request.
	// Without it the resolver is disabled.
	Email string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// Enabled indicates whether the resolver may be used.
	Enabled bool
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
}

// Resolver looks up open access availability for DOIs collected from the
// search sources. It is not a free-text search adapter.
type Resolver struct {
	config     Config
	httpClient *sources.HTTPClient
}

// New creates a new Unpaywall resolver with the given configuration.
func New(cfg Config) *Resolver {
	cfg.applyDefaults()

	return &Resolver{
		config: cfg,
		httpClient: sources.NewHTTPClient(sources.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
		}),
	}
}

// NewWithHTTPClient creates a new resolver with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Resolver {
	cfg.applyDefaults()
	return &Resolver{
		config:     cfg,
		httpClient: httpClient,
	}
}

// IsEnabled reports whether the resolver may be used. A contact email is
// required by the Unpaywall terms of use.
func (r *Resolver) IsEnabled() bool {
	return r.config.Enabled && r.config.Email != ""
}

// SourceType returns the source type identifier.
func (r *Resolver) SourceType() domain.SourceType {
	return domain.SourceUnpaywall
}

// Name returns the human-readable name for this source.
func (r *Resolver) Name() string {
	return sourceName
}

// Resolve fetches the Unpaywall record for each DOI concurrently. DOIs that
// fail to resolve are skipped; the relative order of the input DOIs is
// preserved in the output. A disabled resolver returns an empty slice.
func (r *Resolver) Resolve(ctx context.Context, dois []string) []*domain.Paper {
	if !r.IsEnabled() || len(dois) == 0 {
		return []*domain.Paper{}
	}

	slots := make([]*domain.Paper, len(dois))
	var wg sync.WaitGroup

	for i, doi := range dois {
		wg.Add(1)
		go func(i int, doi string) {
			defer wg.Done()
			paper, err := r.fetch(ctx, doi)
			if err != nil {
				return
			}
			slots[i] = paper
		}(i, doi)
	}
	wg.Wait()

	papers := make([]*domain.Paper, 0, len(dois))
	for _, p := range slots {
		if p != nil {
			papers = append(papers, p)
		}
	}
	return papers
}

func (r *Resolver) fetch(ctx context.Context, doi string) (*domain.Paper, error) {
	doi = domain.NormalizeDOI(doi)
	if doi == "" {
		return nil, fmt.Errorf("empty doi")
	}

	endpoint := strings.TrimRight(r.config.BaseURL, "/") + "/" + url.PathEscape(doi) + "?email=" + url.QueryEscape(r.config.Email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError("doi", doi)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	var record Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&record); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return r.toPaper(&record), nil
}

func (r *Resolver) toPaper(record *Response) *domain.Paper {
	authors := make([]string, 0, len(record.ZAuthors))
	for _, a := range record.ZAuthors {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name == "" {
			name = strings.TrimSpace(a.Name)
		}
		if name != "" {
			authors = append(authors, name)
		}
	}

	pageURL := record.DOIURL
	pdfURL := ""
	if loc := record.BestOALocation; loc != nil {
		if loc.URL != "" {
			pageURL = loc.URL
		}
		pdfURL = loc.URLForPDF
	}

	paper := &domain.Paper{
		Title:      strings.TrimSpace(record.Title),
		URL:        pageURL,
		Authors:    authors,
		Published:  strings.TrimSpace(record.PublishedDate),
		Source:     domain.SourceUnpaywall,
		Journal:    strings.TrimSpace(record.JournalName),
		DOI:        domain.NormalizeDOI(record.DOI),
		OpenAccess: record.IsOA,
		PDFURL:     pdfURL,
	}
	paper.ApplyDefaults()
	return paper
}
