// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, auth, and rate limiting.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/islechat/go-wa-backend/internal/config"
	"github.com/islechat/go-wa-backend/internal/http/handlers"
	"github.com/islechat/go-wa-backend/internal/http/middleware"
)

// Deps carries everything the router needs. All fields are required except
// Verifier, which defaults to rejecting every request when nil.
type Deps struct {
	Auth      handlers.AuthService
	Session   handlers.SessionService
	Messages  handlers.MessageService
	Send      handlers.SendService
	Templates handlers.TemplateService
	Autos     handlers.AutomationService
	Billing   handlers.BillingService
	Analytics handlers.AnalyticsService
	Verifier  middleware.TokenVerifier
}

// RegisterRoutes attaches all middleware and endpoints to the Gin engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with peer-address scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per user/IP)
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := handlers.New(
		deps.Auth,
		deps.Session,
		deps.Messages,
		deps.Send,
		deps.Templates,
		deps.Autos,
		deps.Billing,
		deps.Analytics,
	)

	api := r.Group("/api")

	// Unauthenticated surface: login plus the provider webhook, which
	// authenticates with its own shared secret.
	api.POST("/auth/login", h.Login)
	api.POST("/billing/webhook", h.PaymentWebhook)

	auth := api.Group("")
	auth.Use(middleware.BearerAuth(deps.Verifier))
	{
		// Session and messaging
		auth.GET("/session", h.SessionStatus)
		auth.GET("/messages", h.ListMessages)
		auth.POST("/send", h.SendMessage)

		// Templates
		auth.POST("/templates", h.CreateTemplate)
		auth.GET("/templates", h.ListTemplates)
		auth.GET("/templates/:id", h.GetTemplate)
		auth.PUT("/templates/:id", h.UpdateTemplate)
		auth.DELETE("/templates/:id", h.DeleteTemplate)

		// Automations
		auth.POST("/automations", h.CreateAutomation)
		auth.GET("/automations", h.ListAutomations)
		auth.GET("/automations/:id", h.GetAutomation)
		auth.PUT("/automations/:id", h.UpdateAutomation)
		auth.DELETE("/automations/:id", h.DeleteAutomation)

		// Billing
		auth.GET("/billing/plans", h.Plans)
		auth.POST("/billing/checkout", h.Checkout)
		auth.GET("/billing/invoices", h.Invoices)
		auth.GET("/billing/subscription", h.Subscription)

		// Analytics
		auth.GET("/analytics/overview", h.AnalyticsOverview)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; oversized bodies error on read downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
