package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/sources"
)

const (
	// DefaultBaseURL is the base URL for NCBI E-utilities API.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultRateLimit is the rate limit without an API key (3 requests per
	// second). With an API key the limit increases to 10 requests per second.
	DefaultRateLimit = 3.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 3

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per search.
	DefaultMaxResults = 10

	sourceName = "PubMed"
)

// Config holds the configuration for the PubMed client.
type Config struct {
	// BaseURL is the base URL for the E-utilities API.
	BaseURL string

	// APIKey is the NCBI API key for higher rate limits. Optional.
	APIKey string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the default maximum results per search.
	MaxResults int

	// Enabled indicates whether this source is enabled.
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

// Client implements the sources.Adapter interface for PubMed.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

var _ sources.Adapter = (*Client)(nil)

// New creates a new PubMed client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	return &Client{
		config: cfg,
		httpClient: sources.NewHTTPClient(sources.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
		}),
	}
}

// NewWithHTTPClient creates a new PubMed client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search performs the two-step PubMed search: esearch for PMIDs, then efetch
// for article metadata. When esearch returns no IDs the second request is
// skipped and an empty slice is returned.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]*domain.Paper, error) {
	if maxResults <= 0 {
		maxResults = c.config.MaxResults
	}

	ids, err := c.esearch(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("esearch failed: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Paper{}, nil
	}

	articles, err := c.efetch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("efetch failed: %w", err)
	}

	papers := make([]*domain.Paper, 0, len(articles.Articles))
	for i := range articles.Articles {
		papers = append(papers, c.articleToPaper(&articles.Articles[i]))
	}
	return papers, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourcePubMed
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

func (c *Client) esearch(ctx context.Context, query string, maxResults int) ([]string, error) {
	values := url.Values{}
	values.Set("db", "pubmed")
	values.Set("term", query)
	values.Set("retmax", strconv.Itoa(maxResults))
	values.Set("retmode", "json")
	values.Set("sort", "relevance")
	if c.config.APIKey != "" {
		values.Set("api_key", c.config.APIKey)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/esearch.fcgi?" + values.Encode()
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

	var result esearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding esearch response: %w", err)
	}
	return result.ESearchResult.IDList, nil
}

func (c *Client) efetch(ctx context.Context, ids []string) (*ArticleSet, error) {
	values := url.Values{}
	values.Set("db", "pubmed")
	values.Set("id", strings.Join(ids, ","))
	values.Set("retmode", "xml")
	if c.config.APIKey != "" {
		values.Set("api_key", c.config.APIKey)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/efetch.fcgi?" + values.Encode()
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

	var set ArticleSet
	if err := xml.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&set); err != nil {
		return nil, fmt.Errorf("decoding efetch response: %w", err)
	}
	return &set, nil
}

// articleToPaper converts a PubMed article to a domain Paper.
func (c *Client) articleToPaper(article *Article) *domain.Paper {
	details := article.MedlineCitation.Article

	var summary string
	if details.Abstract != nil {
		summary = strings.TrimSpace(strings.Join(details.Abstract.AbstractText, " "))
	}

	var authors []string
	if details.AuthorList != nil {
		for _, a := range details.AuthorList.Authors {
			name := formatAuthor(a)
			if name != "" {
				authors = append(authors, name)
			}
		}
	}

	pmid := strings.TrimSpace(article.MedlineCitation.PMID)
	paper := &domain.Paper{
		Title:     strings.TrimSpace(details.ArticleTitle),
		Summary:   summary,
		Authors:   authors,
		Published: formatPubDate(details.Journal.JournalIssue.PubDate),
		Source:    domain.SourcePubMed,
		Journal:   strings.TrimSpace(details.Journal.Title),
		PMID:      pmid,
	}
	if pmid != "" {
		paper.URL = "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/"
	}
	paper.ApplyDefaults()
	return paper
}

// formatAuthor renders "LastName ForeName", falling back to the collective
// name for group authorship.
func formatAuthor(a Author) string {
	last := strings.TrimSpace(a.LastName)
	fore := strings.TrimSpace(a.ForeName)
	switch {
	case last != "" && fore != "":
		return last + " " + fore
	case last != "":
		return last
	default:
		return strings.TrimSpace(a.CollectiveName)
	}
}

// formatPubDate joins the structured date parts, falling back to the
// free-form MedlineDate.
func formatPubDate(d PubDate) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.Year, d.Month, d.Day} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return strings.TrimSpace(d.MedlineDate)
}
