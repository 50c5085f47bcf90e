package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fraudscore/internal/api"
	"fraudscore/internal/artifact"
	"fraudscore/internal/cfg"
	"fraudscore/internal/features"
	"fraudscore/internal/metrics"
	"fraudscore/internal/scoring"
	"fraudscore/internal/stats"
	"fraudscore/internal/storage"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Optional .env for local development.
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// A broken artifact must stop the service here, never degrade into
	// serving garbage scores.
	art, err := artifact.Load(c.ModelDir)
	if err != nil {
		log.Fatal().Err(err).Msg("artifact load failed, refusing to serve")
	}

	m := metrics.New()
	mw := metrics.NewWrapper(m)
	mw.ModelAgeSet(time.Since(art.TrainedAt).Seconds())

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	transformer := features.NewTransformer(art.Scaling)
	aggregator := stats.New()
	engine := scoring.NewEngine(transformer, art.Forest, c.Threshold, aggregator, mw, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startMetricsServer(ctx, c.MetricsPort)

	server := api.NewServer(engine, art, c.ServerPort, c.StatsStreamInterval)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("API server failed")
			cancel()
		}
	}()

	log.Info().
		Int("port", c.ServerPort).
		Int("metrics_port", c.MetricsPort).
		Str("model_version", art.Version).
		Float64("threshold", c.Threshold).
		Msg("fraud scoring service started")

	waitForShutdown(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown API server")
	}
	log.Info().Msg("shutdown complete")
}

// initializeStorage opens the prediction log if DATA_PATH is configured.
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		return nil
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("prediction log unavailable, continuing without persistence")
		return nil
	}
	return store
}

// startMetricsServer starts the Prometheus metrics HTTP server.
func startMetricsServer(ctx context.Context, port int) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := server.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

// waitForShutdown blocks until a shutdown signal arrives or the context is
// canceled.
func waitForShutdown(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}
}
