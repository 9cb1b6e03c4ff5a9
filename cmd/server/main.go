// Command server runs the Brilliance research service: an HTTP API that
// turns a research question into a ranked set of academic papers drawn
// from arXiv, PubMed, OpenAlex, Semantic Scholar and CORE, and resolves
// citation markers in LLM-generated answers.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brilliance/research-service/internal/config"
	"github.com/brilliance/research-service/internal/database"
	"github.com/brilliance/research-service/internal/llm"
	"github.com/brilliance/research-service/internal/observability"
	"github.com/brilliance/research-service/internal/search"
	httpserver "github.com/brilliance/research-service/internal/server/http"
	"github.com/brilliance/research-service/internal/sources"
	"github.com/brilliance/research-service/internal/sources/arxiv"
	"github.com/brilliance/research-service/internal/sources/core"
	"github.com/brilliance/research-service/internal/sources/openalex"
	"github.com/brilliance/research-service/internal/sources/pubmed"
	"github.com/brilliance/research-service/internal/sources/semanticscholar"
	"github.com/brilliance/research-service/internal/sources/unpaywall"
	"github.com/brilliance/research-service/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}).With().Str("service", "research-service").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics("brilliance")

	llmClient, err := llm.New(llm.FactoryConfig{
		Provider:    cfg.LLM.Provider,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
		OpenAI: llm.OpenAIConfig{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			Model:   cfg.LLM.OpenAI.Model,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
		},
		Anthropic: llm.AnthropicConfig{
			APIKey:  cfg.LLM.Anthropic.APIKey,
			Model:   cfg.LLM.Anthropic.Model,
			BaseURL: cfg.LLM.Anthropic.BaseURL,
		},
	})
	if err != nil {
		return fmt.Errorf("initializing LLM client: %w", err)
	}

	registry := buildRegistry(cfg.Sources)
	resolver := unpaywall.New(unpaywall.Config{
		BaseURL:   cfg.Sources.Unpaywall.BaseURL,
		Email:     cfg.Sources.Unpaywall.Email,
		Timeout:   cfg.Sources.Unpaywall.Timeout,
		RateLimit: cfg.Sources.Unpaywall.RateLimit,
		Enabled:   cfg.Sources.Unpaywall.Enabled,
	})

	preparer := search.NewPreparer(llmClient, cfg.LLM.MaxKeywords, logger, metrics)
	aggregator := search.NewAggregator(registry, resolver, search.AggregatorConfig{
		PerSourceTimeout:    cfg.Pipeline.PerSourceTimeout,
		MaxResultsPerSource: cfg.Pipeline.MaxResultsPerSource,
	}, logger, metrics)
	selector := search.NewSelector(llmClient, logger, metrics)
	pipeline := search.NewPipeline(preparer, aggregator, selector, search.PipelineConfig{
		MaxContextPapers: cfg.Pipeline.MaxContextPapers,
		OverallTimeout:   cfg.Pipeline.OverallTimeout,
		RankStrategy:     cfg.Pipeline.RankStrategy,
	}, logger, metrics)
	citations := search.NewCitationResolver(logger, metrics)

	var (
		db            *database.DB
		researchStore store.ResearchStore
	)
	if cfg.Database.Enabled {
		db, err = database.New(ctx, &cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		if cfg.Database.MigrationAutoRun {
			migrator, merr := database.NewMigrator(db, cfg.Database.MigrationPath, logger)
			if merr != nil {
				return fmt.Errorf("initializing migrator: %w", merr)
			}
			if merr := migrator.Up(); merr != nil {
				migrator.Close()
				return fmt.Errorf("running migrations: %w", merr)
			}
			migrator.Close()
		}

		researchStore = store.NewPgStore(db)
		logger.Info().Msg("using PostgreSQL research store")
	} else {
		researchStore = store.NewMemoryStore()
		logger.Warn().Msg("database disabled, research records are kept in memory only")
	}

	httpSrv := httpserver.NewServer(httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, pipeline, researchStore, citations, db, logger, metrics)

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("address", cfg.Server.HTTPAddress()).Msg("starting HTTP server")
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      mux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
		go func() {
			logger.Info().Str("address", cfg.Server.MetricsAddress()).Str("path", cfg.Metrics.Path).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}

	logger.Info().Msg("shutdown complete")
	return nil
}

// buildRegistry wires every configured paper source into the fan-out
// registry. Disabled sources are still registered so the registry knows
// about them; the aggregator only fans out to enabled adapters.
func buildRegistry(cfg config.SourcesConfig) *sources.Registry {
	registry := sources.NewRegistry()

	registry.Register(arxiv.New(arxiv.Config{
		BaseURL:    cfg.ArXiv.BaseURL,
		Timeout:    cfg.ArXiv.Timeout,
		RateLimit:  cfg.ArXiv.RateLimit,
		MaxResults: cfg.ArXiv.MaxResults,
		Enabled:    cfg.ArXiv.Enabled,
	}))
	registry.Register(pubmed.New(pubmed.Config{
		BaseURL:    cfg.PubMed.BaseURL,
		APIKey:     cfg.PubMed.APIKey,
		Timeout:    cfg.PubMed.Timeout,
		RateLimit:  cfg.PubMed.RateLimit,
		MaxResults: cfg.PubMed.MaxResults,
		Enabled:    cfg.PubMed.Enabled,
	}))
	registry.Register(openalex.New(openalex.Config{
		BaseURL:    cfg.OpenAlex.BaseURL,
		Email:      cfg.OpenAlex.Email,
		Timeout:    cfg.OpenAlex.Timeout,
		RateLimit:  cfg.OpenAlex.RateLimit,
		MaxResults: cfg.OpenAlex.MaxResults,
		Enabled:    cfg.OpenAlex.Enabled,
	}))
	registry.Register(semanticscholar.New(semanticscholar.Config{
		BaseURL:    cfg.SemanticScholar.BaseURL,
		APIKey:     cfg.SemanticScholar.APIKey,
		Timeout:    cfg.SemanticScholar.Timeout,
		RateLimit:  cfg.SemanticScholar.RateLimit,
		MaxResults: cfg.SemanticScholar.MaxResults,
		Enabled:    cfg.SemanticScholar.Enabled,
	}))
	registry.Register(core.New(core.Config{
		BaseURL:    cfg.Core.BaseURL,
		APIKey:     cfg.Core.APIKey,
		Timeout:    cfg.Core.Timeout,
		RateLimit:  cfg.Core.RateLimit,
		MaxResults: cfg.Core.MaxResults,
		Enabled:    cfg.Core.Enabled,
	}))

	return registry
}
