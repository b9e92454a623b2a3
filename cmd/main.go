package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/skillmatch/internal/adapters/http/api"
	"github.com/okian/skillmatch/internal/adapters/http/site"
	"github.com/okian/skillmatch/internal/adapters/http/swagger"
	app "github.com/okian/skillmatch/internal/app"
	"github.com/okian/skillmatch/internal/config"
	"github.com/okian/skillmatch/internal/domain/skills"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	table, err := cfg.SkillTable(ctx)
	if err != nil {
		log.Error(ctx, "failed to load skill relations", logger.Error(err))
		os.Exit(1)
	}

	svc := newService(cfg, table, log)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "service shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
}

// newService maps configuration onto service options.
func newService(cfg *config.Config, table *skills.Table, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithSkillTable(table),
		app.WithRankWorkers(cfg.RankWorkers),
		app.WithParallelThreshold(cfg.ParallelThreshold),
		app.WithPolicy(cfg.Policy()),
		app.WithRankTimeout(cfg.RankTimeout()),
		app.WithQueueSize(cfg.JobQueueSize),
		app.WithJobWorkers(cfg.JobWorkers),
		app.WithDedupeSize(cfg.JobDedupeSize),
		app.WithResultCapacity(cfg.JobResultCapacity),
	)
}

// newMux registers the business API, the API reference and the docs pages.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithMaxCandidates(cfg.MaxCandidates)).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges derived from service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if active, ok := stats["activeWorkers"].(int); ok {
		metrics.UpdateWorkerActiveCount(active)
	}
	if stored, ok := stats["storedJobs"].(int); ok {
		metrics.UpdateJobResults(stored)
	}
	if relations, ok := stats["skillRelations"].(int); ok {
		metrics.UpdateSkillRelations(relations)
	}
}
