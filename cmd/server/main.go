// Command server runs the auto-responder backend: it connects the messaging
// transport session, drives the inbound reply pipeline, and serves the
// dashboard HTTP API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/islechat/go-wa-backend/internal/ai"
	"github.com/islechat/go-wa-backend/internal/config"
	httpapi "github.com/islechat/go-wa-backend/internal/http"
	"github.com/islechat/go-wa-backend/internal/observability"
	"github.com/islechat/go-wa-backend/internal/pipeline"
	"github.com/islechat/go-wa-backend/internal/reply"
	"github.com/islechat/go-wa-backend/internal/services"
	"github.com/islechat/go-wa-backend/internal/session"
	"github.com/islechat/go-wa-backend/internal/store/gormstore"
	"github.com/islechat/go-wa-backend/internal/sysutil"
	"github.com/islechat/go-wa-backend/internal/transport/loopback"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	logger := sysutil.SetupLogger(cfg.LogLevel, cfg.OTEL.ServiceName, cfg.LogPretty, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup failed")
	}

	st, err := gormstore.Open(gormstore.Options{
		SQLitePath: cfg.DBPath,
		DSN:        cfg.DatabaseURL,
		Tracing:    cfg.OTEL.Enabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("store open failed")
	}

	var completer reply.Completer
	if cfg.AI.APIKey != "" {
		completer = ai.NewOpenAIClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.MaxTokens, cfg.AI.Timeout)
	} else {
		logger.Warn().Msg("no AI key configured, fallback replies use the generic acknowledgment")
	}
	policy := reply.New(completer, logger)

	mgr := session.New(
		&loopback.Dialer{},
		st,
		cfg.Session.Name,
		"",
		session.Backoff{Min: cfg.Session.BackoffMin, Max: cfg.Session.BackoffMax},
		logger,
	)
	pipe := pipeline.New(st, policy, mgr, cfg.Session.QueueSize, cfg.IdempotencyTTL, logger)
	mgr.OnBatch(pipe.Enqueue)
	mgr.Start(ctx)
	go pipe.Run(ctx)

	authSvc := services.NewAuthService(st, cfg.JWTSecret)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Auth:      authSvc,
		Session:   mgr,
		Messages:  st,
		Send:      pipe,
		Templates: services.NewTemplateService(st),
		Autos:     services.NewAutomationService(st),
		Billing:   services.NewBillingService(st, cfg.WebhookSecret),
		Analytics: services.NewAnalyticsService(st),
		Verifier:  authSvc,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	mgr.Shutdown(shutdownCtx)
	if err := shutdownOTel(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("otel shutdown failed")
	}
	if err := st.Close(); err != nil {
		logger.Error().Err(err).Msg("store close failed")
	}
	logger.Info().Msg("bye")
}
