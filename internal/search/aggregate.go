package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/observability"
	"github.com/brilliance/research-service/internal/sources"
	"github.com/brilliance/research-service/internal/sources/unpaywall"
)

// DefaultPerSourceTimeout bounds each adapter search.
const DefaultPerSourceTimeout = 20 * time.Second

// AggregatorConfig configures the fan-out behaviour.
type AggregatorConfig struct {
	// PerSourceTimeout bounds each adapter search.
	PerSourceTimeout time.Duration

	// MaxResultsPerSource is passed to each adapter.
	MaxResultsPerSource int
}

func (c *AggregatorConfig) applyDefaults() {
	if c.PerSourceTimeout <= 0 {
		c.PerSourceTimeout = DefaultPerSourceTimeout
	}
	if c.MaxResultsPerSource <= 0 {
		c.MaxResultsPerSource = 10
	}
}

// Aggregator fans a query out to every selected source concurrently and
// merges the results. A failing source contributes nothing; the aggregation
// itself never fails.
type Aggregator struct {
	registry  *sources.Registry
	unpaywall *unpaywall.Resolver
	config    AggregatorConfig
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// NewAggregator creates an Aggregator. The unpaywall resolver and metrics
// may be nil.
func NewAggregator(registry *sources.Registry, resolver *unpaywall.Resolver, cfg AggregatorConfig, logger zerolog.Logger, metrics *observability.Metrics) *Aggregator {
	cfg.applyDefaults()
	return &Aggregator{
		registry:  registry,
		unpaywall: resolver,
		config:    cfg,
		logger:    observability.ComponentLogger(logger, "aggregator"),
		metrics:   metrics,
	}
}

// Aggregate searches the selected sources concurrently. All adapters are
// launched before any result is awaited; each goroutine writes only its own
// slot. Per-source failures and timeouts are logged and swallowed. After the
// fan-out, DOIs collected from the results are enriched through Unpaywall.
func (a *Aggregator) Aggregate(ctx context.Context, query string, requested []domain.SourceType) map[domain.SourceType][]*domain.Paper {
	adapters := a.registry.Select(requested)

	type slot struct {
		source domain.SourceType
		papers []*domain.Paper
	}

	slots := make([]slot, len(adapters))
	var wg sync.WaitGroup

	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter sources.Adapter) {
			defer wg.Done()

			source := adapter.SourceType()
			slots[i].source = source

			searchCtx, cancel := context.WithTimeout(ctx, a.config.PerSourceTimeout)
			defer cancel()

			start := time.Now()
			a.countStarted(source)

			papers, err := adapter.Search(searchCtx, query, a.config.MaxResultsPerSource)
			elapsed := time.Since(start)
			a.observeDuration(source, elapsed)

			if err != nil {
				a.countFailed(source)
				a.logger.Warn().
					Err(err).
					Str("source", source.String()).
					Dur("elapsed", elapsed).
					Msg("source search failed")
				return
			}

			a.countCompleted(source, len(papers))
			slots[i].papers = papers
		}(i, adapter)
	}
	wg.Wait()

	bySource := make(map[domain.SourceType][]*domain.Paper, len(adapters)+1)
	for _, s := range slots {
		if len(s.papers) > 0 {
			bySource[s.source] = s.papers
		}
	}

	if enriched := a.enrichDOIs(ctx, bySource); len(enriched) > 0 {
		bySource[domain.SourceUnpaywall] = enriched
	}

	return bySource
}

// enrichDOIs collects DOIs case-insensitively in first-seen order from the
// search results and resolves them through Unpaywall.
func (a *Aggregator) enrichDOIs(ctx context.Context, bySource map[domain.SourceType][]*domain.Paper) []*domain.Paper {
	if a.unpaywall == nil || !a.unpaywall.IsEnabled() {
		return nil
	}

	seen := make(map[string]struct{})
	var dois []string
	// Iterate in canonical source order so the DOI list is deterministic.
	for _, source := range domain.AllSourceTypes {
		if source == domain.SourceUnpaywall {
			continue
		}
		for _, p := range bySource[source] {
			doi := domain.NormalizeDOI(p.DOI)
			if doi == "" {
				continue
			}
			if _, ok := seen[strings.ToLower(doi)]; ok {
				continue
			}
			seen[strings.ToLower(doi)] = struct{}{}
			dois = append(dois, doi)
		}
	}
	if len(dois) == 0 {
		return nil
	}

	if a.metrics != nil {
		a.metrics.DOIsEnriched.Add(float64(len(dois)))
	}

	papers := a.unpaywall.Resolve(ctx, dois)
	a.logger.Debug().
		Int("dois", len(dois)).
		Int("resolved", len(papers)).
		Msg("unpaywall enrichment finished")
	return papers
}

func (a *Aggregator) countStarted(source domain.SourceType) {
	if a.metrics != nil {
		a.metrics.SearchesStarted.WithLabelValues(source.String()).Inc()
	}
}

func (a *Aggregator) countCompleted(source domain.SourceType, papers int) {
	if a.metrics != nil {
		a.metrics.SearchesCompleted.WithLabelValues(source.String()).Inc()
		a.metrics.PapersBySource.WithLabelValues(source.String()).Add(float64(papers))
	}
}

func (a *Aggregator) countFailed(source domain.SourceType) {
	if a.metrics != nil {
		a.metrics.SearchesFailed.WithLabelValues(source.String()).Inc()
	}
}

func (a *Aggregator) observeDuration(source domain.SourceType, d time.Duration) {
	if a.metrics != nil {
		a.metrics.SearchDuration.WithLabelValues(source.String()).Observe(d.Seconds())
	}
}
