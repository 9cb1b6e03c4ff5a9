package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/sources"
)

const (
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit (10 requests per second for
	// the polite pool).
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per request.
	DefaultMaxResults = 10

	sourceName = "OpenAlex"
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	BaseURL string

	// Email joins the polite pool for better rate limits. Optional.
	Email string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the maximum results to return per search request.
	MaxResults int

	// Enabled indicates whether this source is enabled for searches.
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
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
}

// Client implements the sources.Adapter interface for OpenAlex.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

var _ sources.Adapter = (*Client)(nil)

// New creates a new OpenAlex client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	userAgent := "Brilliance-ResearchService/1.0"
	if cfg.Email != "" {
		userAgent += " (mailto:" + cfg.Email + ")"
	}

	return &Client{
		config: cfg,
		httpClient: sources.NewHTTPClient(sources.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
			UserAgent: userAgent,
		}),
	}
}

// NewWithHTTPClient creates a new OpenAlex client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries OpenAlex works sorted by relevance score, restricted to
// works carrying a DOI.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]*domain.Paper, error) {
	if maxResults <= 0 {
		maxResults = c.config.MaxResults
	}

	values := url.Values{}
	values.Set("search", query)
	values.Set("per-page", strconv.Itoa(maxResults))
	values.Set("sort", "relevance_score:desc")
	values.Set("filter", "has_doi:true")
	if c.config.Email != "" {
		values.Set("mailto", c.config.Email)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/works?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	var result SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	papers := make([]*domain.Paper, 0, len(result.Results))
	for i := range result.Results {
		papers = append(papers, c.workToPaper(&result.Results[i]))
	}
	return papers, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceOpenAlex
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// workToPaper converts an OpenAlex work to a domain Paper. The paper URL
// prefers the DOI link, then the open access URL, then the OpenAlex id.
func (c *Client) workToPaper(work *Work) *domain.Paper {
	title := work.Title
	if title == "" {
		title = work.DisplayName
	}

	authors := make([]string, 0, len(work.Authorships))
	for _, a := range work.Authorships {
		if name := strings.TrimSpace(a.Author.DisplayName); name != "" {
			authors = append(authors, name)
		}
	}

	doi := domain.NormalizeDOI(work.DOI)

	pageURL := ""
	switch {
	case doi != "":
		pageURL = "https://doi.org/" + doi
	case work.OpenAccess != nil && work.OpenAccess.OAURL != "":
		pageURL = work.OpenAccess.OAURL
	default:
		pageURL = work.ID
	}

	journal := ""
	pdfURL := ""
	if work.PrimaryLocation != nil {
		pdfURL = work.PrimaryLocation.PDFURL
		if work.PrimaryLocation.Source != nil {
			journal = work.PrimaryLocation.Source.DisplayName
		}
	}

	openAccess := work.OpenAccess != nil && work.OpenAccess.IsOA

	paper := &domain.Paper{
		Title:         strings.TrimSpace(title),
		Summary:       reconstructAbstract(work.AbstractInvertedIndex),
		URL:           pageURL,
		Authors:       authors,
		Published:     strings.TrimSpace(work.PublicationDate),
		Source:        domain.SourceOpenAlex,
		Journal:       journal,
		DOI:           doi,
		CitationCount: work.CitedByCount,
		OpenAccess:    openAccess,
		PDFURL:        pdfURL,
	}
	paper.ApplyDefaults()
	return paper
}

// maxAbstractWords bounds reconstruction against oversized payloads.
const maxAbstractWords = 100_000

// reconstructAbstract rebuilds the abstract text from OpenAlex's inverted
// index format, which maps each word to the positions where it occurs.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}

	totalPairs := 0
	for _, positions := range invertedIndex {
		totalPairs += len(positions)
	}
	if totalPairs > maxAbstractWords {
		return ""
	}

	pairs := make([]posWord, 0, totalPairs)
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	var builder strings.Builder
	builder.Grow(totalPairs * 7)
	for i, pair := range pairs {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(pair.word)
	}
	return builder.String()
}
