package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/splitpot/splitpot/internal/adapter/http/handler"
	"github.com/splitpot/splitpot/internal/adapter/http/middleware"
	"github.com/splitpot/splitpot/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	GroupHandler      *handler.GroupHandler
	ExpenseHandler    *handler.ExpenseHandler
	SettlementHandler *handler.SettlementHandler
	BalanceHandler    *handler.BalanceHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	IdempotencyTTL    time.Duration
	Logger            zerolog.Logger
	RateLimit         float64
	RateBurst         int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Groups
		r.Route("/groups", func(r chi.Router) {
			r.Post("/", cfg.GroupHandler.Create)
			r.Get("/", cfg.GroupHandler.ListByUser)
			r.Get("/{id}", cfg.GroupHandler.Get)
			r.Put("/{id}", cfg.GroupHandler.Rename)
			r.Delete("/{id}", cfg.GroupHandler.Delete)
			r.Post("/{id}/members", cfg.GroupHandler.AddMember)
			r.Delete("/{id}/members/{userID}", cfg.GroupHandler.RemoveMember)
			r.Get("/{id}/expenses", cfg.ExpenseHandler.ListByGroup)
			r.Get("/{id}/settlements", cfg.SettlementHandler.ListByGroup)
			r.Get("/{id}/balances", cfg.BalanceHandler.GroupBalances)
			r.Get("/{id}/consistency", cfg.BalanceHandler.CheckConsistency)
		})

		// Expenses
		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", cfg.ExpenseHandler.Create)
			r.Get("/", cfg.ExpenseHandler.List)
			r.Get("/{id}", cfg.ExpenseHandler.Get)
			r.Put("/{id}", cfg.ExpenseHandler.Update)
			r.Delete("/{id}", cfg.ExpenseHandler.Delete)
		})

		// Settlements
		r.Route("/settlements", func(r chi.Router) {
			r.Post("/", cfg.SettlementHandler.Create)
			r.Get("/", cfg.SettlementHandler.ListByUser)
			r.Post("/{id}/complete", cfg.SettlementHandler.Complete)
			r.Post("/{id}/cancel", cfg.SettlementHandler.Cancel)
		})

		// Split preview
		r.Post("/splits/preview", cfg.ExpenseHandler.PreviewSplit)
	})

	return r
}
