package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/clinai/neurodiag/internal/api/handlers"
	mw "github.com/clinai/neurodiag/internal/api/middleware"
	"github.com/clinai/neurodiag/internal/buildconfig"
	"github.com/clinai/neurodiag/internal/config"
	"github.com/clinai/neurodiag/internal/domain"
	"github.com/clinai/neurodiag/internal/llm"
	"github.com/clinai/neurodiag/internal/service"
	"github.com/clinai/neurodiag/internal/session"
	"github.com/clinai/neurodiag/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router   *chi.Mux
	Pruner   *service.TranscriptPruner
	Sessions *session.Registry

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires the engine, collaborators and HTTP surface. The rule base is
// already loaded: a knowledge-base failure is fatal before this point.
func NewApp(rules *domain.RuleBase, db *pgxpool.Pool, logger *zap.Logger) *App {
	// Session registry: one lockable fact-store handle per session with
	// TTL/capacity eviction instead of unbounded process-lifetime growth.
	registry := session.NewRegistry(rules, config.SessionCapacity(), config.SessionTTL(), logger)

	var transcripts domain.TranscriptStore
	var pruner *service.TranscriptPruner
	if db != nil {
		ts := store.NewTranscriptStore(db)
		transcripts = ts
		pruner = service.NewTranscriptPruner(ts, logger)
	}

	// Extraction/narration collaborator via provider factory.
	llmProvider := config.LLMProvider()
	client, err := llm.NewClient(llmProvider, config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
	} else {
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	var extractor domain.Extractor
	var narrator domain.Narrator
	if client != nil {
		extractor = client
		narrator = client
	}

	// Services
	diagnosisSvc := service.NewDiagnosisService(registry, rules, logger)
	diagnosisSvc.SetMaxIterations(config.ForwardMaxIterations())
	curatorSvc := service.NewCuratorService(narrator, logger)
	dialogueSvc := service.NewDialogueService(registry, extractor, diagnosisSvc, curatorSvc, transcripts, logger)
	dialogueSvc.SetInferenceTimeout(config.InferenceTimeout())

	// Handlers
	chatHandler := handlers.NewChatHandler(dialogueSvc)
	sessionHandler := handlers.NewSessionHandler(diagnosisSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Pruner:    pruner,
		Sessions:  registry,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics (no versioning)
	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	// Conversational turn endpoint
	r.Post("/chat", chatHandler.Turn)

	// Direct engine surface
	r.Route("/v1/sessions/{id}", func(r chi.Router) {
		r.Post("/symptoms", sessionHandler.AddSymptoms)
		r.Post("/risk-factors", sessionHandler.AddRiskFactors)
		r.Post("/diagnose", sessionHandler.Diagnose)
		r.Post("/diagnose/{disease}", sessionHandler.DiagnoseTarget)
		r.Get("/explain/{disease}", sessionHandler.Explain)
		r.Delete("/", sessionHandler.Reset)
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds":  uptime.Seconds(),
			"uptime_human":    uptime.Round(time.Second).String(),
			"request_count":   app.requestCount.Load(),
			"error_count":     app.errorCount.Load(),
			"active_sessions": app.Sessions.Len(),
			"goroutines":      runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.TranscriptStore = (*store.TranscriptStore)(nil)
	_ domain.Extractor       = (*llm.Client)(nil)
	_ domain.Narrator        = (*llm.Client)(nil)
)
