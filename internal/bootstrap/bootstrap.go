// Package bootstrap builds the conversation engine from configuration. It
// is shared by the server and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/sahai/internal/catalog"
	"github.com/Harshitk-cp/sahai/internal/config"
	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/llm"
	"github.com/Harshitk-cp/sahai/internal/nlu"
	"github.com/Harshitk-cp/sahai/internal/service"
	"github.com/Harshitk-cp/sahai/internal/store"
	"github.com/Harshitk-cp/sahai/internal/tools"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Engine is everything a transport needs to serve conversations.
type Engine struct {
	Catalog      *catalog.Catalog
	Registry     *tools.Registry
	Sessions     *service.SessionManager
	Orchestrator *service.Orchestrator
	Sweeper      *service.SessionSweeper
	Failures     *service.FailureHandler
	Generator    domain.TextGenerator
}

// NewLogger returns a production logger at the given level, or a
// development logger for "debug".
func NewLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Connect opens and pings a pool when DATABASE_URL is set. It returns a nil
// pool otherwise.
func Connect(ctx context.Context, logger *zap.Logger) (*pgxpool.Pool, error) {
	dbURL := config.DatabaseURL()
	if dbURL == "" {
		logger.Info("DATABASE_URL not set, using in-memory stores")
		return nil, nil
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")
	return pool, nil
}

// CatalogSource picks the catalog provider from CATALOG_SOURCE.
func CatalogSource(pool *pgxpool.Pool) (domain.CatalogSource, error) {
	switch src := config.CatalogSource(); src {
	case "embedded":
		return catalog.EmbeddedSource{}, nil
	case "file":
		if config.CatalogPath() == "" {
			return nil, fmt.Errorf("CATALOG_PATH is required for file catalog source")
		}
		return catalog.FileSource{Path: config.CatalogPath()}, nil
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres catalog source")
		}
		return store.NewCatalogStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown catalog source: %s (valid options: embedded, file, postgres)", src)
	}
}

// NewGenerator builds the configured text generator. A provider that cannot
// be initialised is logged and yields nil; replies then fall back to
// templates.
func NewGenerator(ctx context.Context, logger *zap.Logger) domain.TextGenerator {
	provider := config.LLMProvider()
	gen, err := llm.NewClient(ctx, provider, config.LLMAPIKey(), config.LLMModel())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", provider), zap.Error(err))
		return nil
	}
	logger.Info("LLM client initialized", zap.String("provider", provider))
	return gen
}

// Options collects the orchestrator settings from configuration.
func Options() service.OrchestratorOptions {
	opts := service.DefaultOrchestratorOptions()
	opts.Locale = config.DefaultLocale()
	opts.MaxRetries = config.MaxRetries()
	opts.HistoryLimit = config.HistoryLimit()
	opts.MinConfidence = config.MinInputConfidence()
	opts.AgeTolerance = config.AgeTolerance()
	opts.IncomeTolerance = config.IncomeTolerance()
	opts.Generate = domain.GenerateOptions{
		Temperature: config.LLMTemperature(),
		MaxTokens:   config.LLMMaxTokens(),
	}
	opts.LLMTimeout = config.LLMTimeout()
	return opts
}

// New wires the engine. pool may be nil; generator may be nil.
func New(ctx context.Context, pool *pgxpool.Pool, generator domain.TextGenerator, logger *zap.Logger) (*Engine, error) {
	src, err := CatalogSource(pool)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded",
		zap.String("source", config.CatalogSource()),
		zap.Int("entries", cat.Len()))

	var (
		statuses       domain.ApplicationStatusSource
		contradictions domain.ContradictionLog
	)
	if pool != nil {
		statuses = store.NewApplicationStore(pool)
		contradictions = store.NewContradictionStore(pool)
	} else {
		statuses = store.NewMemoryApplicationStore(store.SampleApplications()...)
	}

	registry := tools.NewDefaultRegistry(cat, statuses, nlu.NewExtractor())
	sessions := service.NewSessionManager(config.SessionTTL(), logger)
	opts := Options()

	sweeper := service.NewSessionSweeper(sessions, logger)
	sweeper.SetInterval(config.SessionSweepInterval())

	return &Engine{
		Catalog:      cat,
		Registry:     registry,
		Sessions:     sessions,
		Orchestrator: service.NewOrchestrator(sessions, registry, nlu.NewClassifier(), generator, contradictions, opts, logger),
		Sweeper:      sweeper,
		Failures:     service.NewFailureHandler(opts.Locale, logger),
		Generator:    generator,
	}, nil
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.CatalogSource           = (*store.CatalogStore)(nil)
	_ domain.CatalogSource           = catalog.EmbeddedSource{}
	_ domain.CatalogSource           = catalog.FileSource{}
	_ domain.ApplicationStatusSource = (*store.ApplicationStore)(nil)
	_ domain.ApplicationStatusSource = (*store.MemoryApplicationStore)(nil)
	_ domain.ContradictionLog        = (*store.ContradictionStore)(nil)
	_ domain.TextGenerator           = (*llm.OpenAIClient)(nil)
	_ domain.TextGenerator           = (*llm.AnthropicClient)(nil)
	_ domain.TextGenerator           = (*llm.GeminiClient)(nil)
	_ domain.TextGenerator           = (*llm.CerebrasClient)(nil)
	_ domain.TextGenerator           = (*llm.MockClient)(nil)
)
