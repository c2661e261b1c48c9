package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/sahai/internal/api/handlers"
	mw "github.com/Harshitk-cp/sahai/internal/api/middleware"
	"github.com/Harshitk-cp/sahai/internal/bootstrap"
	"github.com/Harshitk-cp/sahai/internal/buildconfig"
	"github.com/Harshitk-cp/sahai/internal/config"
	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds the router and background services for lifecycle management.
type App struct {
	Router      *chi.Mux
	Engine      *bootstrap.Engine
	RateLimiter *mw.RateLimiter

	db           Pinger
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
	rateLimited  atomic.Int64
}

// Options are the transport settings; zero values disable the feature.
type Options struct {
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

// OptionsFromConfig reads Options from the environment.
func OptionsFromConfig() Options {
	return Options{
		APIKey:         config.APIKey(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
	}
}

// NewApp mounts the HTTP surface over engine. db may be nil.
func NewApp(engine *bootstrap.Engine, db *pgxpool.Pool, opts Options, logger *zap.Logger) *App {
	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Engine:    engine,
		startTime: time.Now(),
	}
	if db != nil {
		app.db = db
	}

	turnHandler := handlers.NewTurnHandler(engine.Orchestrator)
	sessionHandler := handlers.NewSessionHandler(engine.Orchestrator)
	catalogHandler := handlers.NewCatalogHandler(engine.Catalog)

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount, &app.rateLimited)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	if opts.RateLimitRPS > 0 {
		app.RateLimiter = mw.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
		r.Use(app.RateLimiter.Middleware(engine.Failures.Message(domain.FailureRateLimit)))
	}

	// Health and metrics (no auth)
	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(opts.APIKey))

		r.Post("/turns", turnHandler.Create)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Delete("/", sessionHandler.Delete)
			r.Get("/contradictions", sessionHandler.Contradictions)
			r.Post("/contradictions/resolve", sessionHandler.Resolve)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", catalogHandler.List)
			r.Get("/{id}", catalogHandler.Get)
		})
	})

	return app
}

// Start launches background work owned by the HTTP layer.
func (app *App) Start() {
	if app.RateLimiter != nil {
		app.RateLimiter.Start()
	}
}

func (app *App) Stop() {
	if app.RateLimiter != nil {
		app.RateLimiter.Stop()
	}
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		body := map[string]any{
			"status":       "ok",
			"version":      buildconfig.Version(),
			"commit":       buildconfig.Commit(),
			"catalog_size": app.Engine.Catalog.Len(),
			"llm":          app.Engine.Generator != nil,
		}

		if app.db != nil {
			if err := app.db.Ping(r.Context()); err != nil {
				body["status"] = "error"
				body["error"] = err.Error()
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(body)
				return
			}
			body["database"] = "ok"
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"rate_limited":   app.rateLimited.Load(),
			"conversations":  app.Engine.Orchestrator.Stats(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

var _ handlers.Conversations = (*service.Orchestrator)(nil)
