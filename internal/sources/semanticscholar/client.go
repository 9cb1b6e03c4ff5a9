package semanticscholar

import (
	"context"
	"encoding/json"
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
	// DefaultBaseURL is the default Semantic Scholar API base URL.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRateLimit is the default rate limit. Without an API key the
	// public pool allows roughly 1 request per second.
	DefaultRateLimit = 1.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 1

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per request.
	DefaultMaxResults = 10

	sourceName = "Semantic Scholar"
)

// searchFields lists the paper fields requested from the search endpoint.
const searchFields = "paperId,title,abstract,url,year,citationCount,influentialCitationCount,authors,journal,externalIds"

// Config holds configuration for the Semantic Scholar client.
type Config struct {
	// BaseURL is the Semantic Scholar API base URL.
	BaseURL string

	// APIKey raises rate limits when present. Optional.
	APIKey string

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

// Client implements the sources.Adapter interface for Semantic Scholar.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

var _ sources.Adapter = (*Client)(nil)

// New creates a new Semantic Scholar client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	return &Client{
		config: cfg,
		httpClient: sources.NewHTTPClient(sources.HTTPClientConfig{
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			BurstSize:    cfg.BurstSize,
			APIKey:       cfg.APIKey,
			APIKeyHeader: "x-api-key",
		}),
	}
}

// NewWithHTTPClient creates a new Semantic Scholar client with a custom HTTP
// client. This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries the paper search endpoint with an explicit fields list.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]*domain.Paper, error) {
	if maxResults <= 0 {
		maxResults = c.config.MaxResults
	}

	values := url.Values{}
	values.Set("query", query)
	values.Set("limit", strconv.Itoa(maxResults))
	values.Set("fields", searchFields)

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/paper/search?" + values.Encode()
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

	papers := make([]*domain.Paper, 0, len(result.Data))
	for i := range result.Data {
		papers = append(papers, c.toPaper(&result.Data[i]))
	}
	return papers, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceSemanticScholar
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

func (c *Client) toPaper(sp *Paper) *domain.Paper {
	authors := make([]string, 0, len(sp.Authors))
	for _, a := range sp.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	published := ""
	if sp.Year > 0 {
		published = strconv.Itoa(sp.Year)
	}

	journal := ""
	if sp.Journal != nil {
		journal = strings.TrimSpace(sp.Journal.Name)
	}

	paper := &domain.Paper{
		Title:          strings.TrimSpace(sp.Title),
		Summary:        strings.TrimSpace(sp.Abstract),
		URL:            strings.TrimSpace(sp.URL),
		Authors:        authors,
		Published:      published,
		Source:         domain.SourceSemanticScholar,
		Journal:        journal,
		DOI:            domain.NormalizeDOI(sp.ExternalIDs.DOI),
		CitationCount:  sp.CitationCount,
		InfluenceScore: sp.InfluentialCitationCount,
		PaperID:        sp.PaperID,
	}
	paper.ApplyDefaults()
	return paper
}
