package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/z-labo/voteboard/internal/adapters/blobstore"
	"github.com/z-labo/voteboard/internal/adapters/http/api"
	"github.com/z-labo/voteboard/internal/adapters/http/docs"
	"github.com/z-labo/voteboard/internal/app"
	"github.com/z-labo/voteboard/internal/config"
	"github.com/z-labo/voteboard/pkg/logger"
	"github.com/z-labo/voteboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
	storeMetricsInterval  = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// the service collects its own system metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := buildStore(cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize store: " + err.Error() + "\n")
		return
	}
	log.Info(ctx, "store initialized",
		logger.String("backend", cfg.StoreBackend),
		logger.String("data_dir", cfg.DataDir),
	)

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithBaseFolder(cfg.BaseFolder),
		app.WithMaxRawVotes(cfg.MaxRawVotes),
	)

	// Background metrics updaters
	go startSystemMetricsUpdater(ctx)
	go startStoreMetricsUpdater(ctx, svc, log)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	docs.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)

	handler := api.RequestIDMiddleware(api.CORSMiddleware(cfg.AllowedOrigins, mux))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildStore constructs the configured blob store backend.
func buildStore(cfg *config.Config) (blobstore.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return blobstore.NewMemoryStore(blobstore.WithPageSize(cfg.ListPageSize)), nil
	default:
		return blobstore.NewFSStore(cfg.DataDir, blobstore.WithPageSize(cfg.ListPageSize))
	}
}

// startSystemMetricsUpdater periodically updates system-level metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}

// startStoreMetricsUpdater periodically refreshes the store object gauge.
func startStoreMetricsUpdater(ctx context.Context, svc *app.Service, log logger.Logger) {
	ticker := time.NewTicker(storeMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := svc.StoreObjectCount(ctx)
			if err != nil {
				log.Warn(ctx, "store object count failed", logger.Error(err))
				continue
			}
			metrics.UpdateStoreObjects(count)
		}
	}
}
