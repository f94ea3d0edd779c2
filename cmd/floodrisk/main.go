// Command floodrisk serves the flood-risk API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/couchcryptid/flood-risk-service/internal/adapter/http"
	"github.com/couchcryptid/flood-risk-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/flood-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-risk-service/internal/adapter/kma"
	"github.com/couchcryptid/flood-risk-service/internal/assessment"
	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/registry"
	"github.com/couchcryptid/flood-risk-service/internal/sweep"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	metrics.SetFeatureGauges(cfg.WeatherEnabled, cfg.FloodSimulationEnabled)

	reg, err := registry.Load(cfg.RegistryFile)
	if err != nil {
		logger.Error("failed to load district registry", "error", err)
		os.Exit(1)
	}
	logger.Info("district registry loaded", "regions", len(reg.Regions()), "districts", reg.Len(), "file", cfg.RegistryFile)

	// Live rainfall (feature-flagged via WEATHER_ENABLED / KMA_SERVICE_KEY).
	var source domain.ObservationSource
	if cfg.WeatherEnabled {
		client := kma.NewClient(cfg.KMABaseURL, cfg.KMATimeout, cfg.KMADataType, metrics, logger)
		limited := kma.NewRateLimitedSource(client, cfg.KMARateLimit, cfg.KMARateBurst)
		bounded := kma.NewTimeoutSource(limited, cfg.KMATimeout)
		source = kma.NewCachedSource(bounded, cfg.KMACacheTTL, metrics)
		logger.Info("live rainfall enabled",
			"data_type", cfg.KMADataType,
			"timeout", cfg.KMATimeout,
			"cache_ttl", cfg.KMACacheTTL,
			"rate_limit", cfg.KMARateLimit,
		)
	} else {
		logger.Info("live rainfall disabled, using request rainfall")
	}

	var (
		publisher assessment.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("assessment publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	svc := assessment.New(reg, source, domain.NewDepthSimulator(nil), publisher, logger, metrics)

	opts := httpapi.Options{
		Settings:     cfg.Settings(),
		APIRateLimit: cfg.APIRateLimit,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweepDone := make(chan struct{})
	if cfg.SweepInterval > 0 {
		sweeper := sweep.New(svc, cfg.Settings(), cfg.SweepInterval, logger, metrics)
		opts.Snapshots = sweeper
		go func() {
			defer close(sweepDone)
			if err := sweeper.Run(ctx); err != nil {
				logger.Error("sweep error", "error", err)
			}
		}()
	} else {
		close(sweepDone)
	}

	api := httpapi.NewHandler(opts, svc, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, api, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-sweepDone:
	case <-shutdownCtx.Done():
		logger.Warn("sweep did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
