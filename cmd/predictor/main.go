package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"energy-predictor/internal/cfg"
	"energy-predictor/internal/metrics"
	"energy-predictor/internal/ml"
	"energy-predictor/internal/storage"
	"energy-predictor/internal/web"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	setupLogging(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	predictor := initializePredictor(c, mw, store)

	opts := web.Options{
		Port:           c.HTTPPort,
		Predictor:      predictor,
		Metrics:        mw,
		HistoryLimit:   c.HistoryLimit,
		PredictTimeout: c.PredictTimeout,
	}
	if store != nil {
		opts.History = store
	}
	if c.MetricsPort == 0 {
		opts.MetricsHandler = promhttp.Handler()
	} else {
		startMetricsServer(ctx, c, cancel)
	}

	server, err := web.NewServer(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("web server setup failed")
	}
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("web server start failed")
	}

	log.Info().
		Int("port", c.HTTPPort).
		Str("default_model", predictor.Models().DefaultName()).
		Strs("models", predictor.Models().Names()).
		Msg("Energy predictor ready")

	waitForShutdown(ctx, cancel, func() { reloadModels(c, predictor.Models()) })

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
	}
}

// setupLogging applies LOG_LEVEL and LOG_FORMAT to the global logger
func setupLogging(c cfg.Settings) {
	zerolog.SetGlobalLevel(c.ZerologLevel())
	if strings.EqualFold(c.LogFormat, "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// initializeStorage initializes storage if DATA_PATH is configured
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath != "" {
		if err := os.MkdirAll(c.DataPath, 0o755); err != nil {
			log.Warn().Err(err).Msg("storage initialization failed, continuing without persistence")
			return nil
		}
		store, err := storage.New(c.DataPath)
		if err != nil {
			log.Warn().Err(err).Msg("storage initialization failed, continuing without persistence")
			return nil
		}
		return store
	}
	return nil
}

// initializePredictor loads the model catalog, writing sample artifacts first
// when asked to.
func initializePredictor(c cfg.Settings, mw *metrics.MetricsWrapper, store *storage.Store) *ml.Predictor {
	if c.InitSampleModels {
		if err := ml.WriteSampleModels(c.ModelsDir); err != nil {
			log.Fatal().Err(err).Str("dir", c.ModelsDir).Msg("failed to write sample models")
		}
	}

	mm, err := ml.NewModelManager(c.ModelsDir, c.DefaultModel, mw)
	if err != nil {
		log.Fatal().Err(err).Str("dir", c.ModelsDir).Msg("model catalog load failed")
	}

	if c.PreloadModels {
		if err := mm.Preload(); err != nil {
			log.Fatal().Err(err).Msg("model preload failed")
		}
	}

	if store == nil {
		return ml.NewPredictor(mm, mw, nil)
	}
	return ml.NewPredictor(mm, mw, store)
}

// startMetricsServer starts the Prometheus metrics HTTP server on its own port
func startMetricsServer(ctx context.Context, c cfg.Settings, cancel context.CancelFunc) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", c.MetricsPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", c.MetricsPort).Msg("Starting metrics server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
			cancel()
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()
}

// reloadModels drops the cached artifacts so the next request reads them
// from disk again, preloading them when configured to.
func reloadModels(c cfg.Settings, mm *ml.ModelManager) {
	mm.Reload()
	log.Info().Str("dir", c.ModelsDir).Msg("model cache cleared")
	if c.PreloadModels {
		if err := mm.Preload(); err != nil {
			log.Error().Err(err).Msg("model preload after reload failed")
		}
	}
}

// waitForShutdown blocks until SIGINT, SIGTERM or ctx ends. SIGHUP calls
// reload and keeps waiting.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, reload func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	handleSignals(ctx, sigChan, cancel, reload)
}

func handleSignals(ctx context.Context, sigChan <-chan os.Signal, cancel context.CancelFunc, reload func()) {
	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				log.Info().Msg("reload signal received")
				reload()
				continue
			}
			log.Info().Msg("shutdown signal received")
		case <-ctx.Done():
			log.Info().Msg("context canceled")
		}
		break
	}

	log.Info().Msg("shutting down gracefully...")
	cancel()
}
