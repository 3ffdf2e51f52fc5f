package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emailwriter/emailwriter/internal/config"
	"github.com/emailwriter/emailwriter/internal/handler"
	"github.com/emailwriter/emailwriter/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Email routes (rate limited when enabled)
	emailRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Limit:  cfg.Security.RateLimiting.Limit,
		Window: cfg.Security.RateLimiting.Window,
		KeyFn:  middleware.IPKey,
	})
	mux.Handle("POST /api/email/generate", emailRateLimit(http.HandlerFunc(h.GenerateEmail)))
	mux.Handle("POST /api/email/analyze", emailRateLimit(http.HandlerFunc(h.AnalyzeEmail)))

	// Apply middleware stack
	var handler http.Handler = mux

	// CORS
	handler = mw.CORS(cfg.CORS.AllowedOrigins)(handler)

	// Security headers
	handler = mw.SecurityHeaders(handler)

	// Request logging
	handler = mw.Logger(handler)

	// Request ID
	handler = mw.RequestID(handler)

	// Panic recovery (outermost)
	handler = mw.Recover(handler)

	return handler
}
