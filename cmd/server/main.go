package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/forcemap/internal/config"
	"github.com/onnwee/forcemap/internal/errorreporting"
	"github.com/onnwee/forcemap/internal/logger"
	"github.com/onnwee/forcemap/internal/server"
	"github.com/onnwee/forcemap/internal/tracing"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	cfg := config.Load()

	logger.Init(cfg.LogLevel)
	logger.Info("Initializing layout server", "version", cfg.SentryRelease, "log_level", cfg.LogLevel)

	if err := errorreporting.Init(cfg.SentryEnvironment); err != nil {
		logger.Warn("Failed to initialize error reporting", "error", err)
	} else if errorreporting.IsSentryEnabled() {
		logger.Info("Error reporting initialized", "environment", cfg.SentryEnvironment)
		defer func() {
			logger.Info("Flushing error reports...")
			errorreporting.Flush(2 * time.Second)
		}()
	}

	shutdownTracing, err := tracing.Init("forcemap-layout", tracing.Options{
		Enabled:    cfg.OTELEnabled,
		Endpoint:   cfg.OTELEndpoint,
		SampleRate: cfg.OTELSampleRate,
		Version:    cfg.SentryRelease,
	})
	if err != nil {
		logger.Warn("Failed to initialize tracing", "error", err)
	} else if cfg.OTELEnabled {
		logger.Info("Tracing initialized", "endpoint", cfg.OTELEndpoint, "sample_rate", cfg.OTELSampleRate)
		defer func() {
			if err := shutdownTracing(ctx); err != nil {
				logger.Error("Failed to shutdown tracer", "error", err)
			}
		}()
	}

	srv, err := server.New(ctx, cfg)
	if err != nil {
		logger.Error("Server init failed", "error", err)
		log.Fatalf("server init failed: %v", err)
	}
	srv.Start(ctx)

	logger.Info("Server running", "address", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, srv.Router()))
}
