package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stadio-ml/stadio/internal/adapters/auth"
	"github.com/stadio-ml/stadio/internal/adapters/dump"
	"github.com/stadio-ml/stadio/internal/adapters/http/api"
	"github.com/stadio-ml/stadio/internal/adapters/repository"
	"github.com/stadio-ml/stadio/internal/adapters/storage"
	"github.com/stadio-ml/stadio/internal/app"
	"github.com/stadio-ml/stadio/internal/config"
	"github.com/stadio-ml/stadio/internal/domain/dataset"
	"github.com/stadio-ml/stadio/internal/domain/gate"
	"github.com/stadio-ml/stadio/internal/domain/scoring"
	"github.com/stadio-ml/stadio/internal/domain/stage"
	"github.com/stadio-ml/stadio/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialization errors go to stderr; the logger may not be up yet.
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// The competition window, gold labels, roster and metric are all
	// load-or-die: serving with any of them broken would corrupt scores.
	clock, err := stage.ParseClock(cfg.OpenTime, cfg.CloseTime, cfg.TerminateTime)
	if err != nil {
		log.Fatal(ctx, "invalid competition window", logger.Error(err))
	}
	gold, err := dataset.LoadFile(cfg.GoldFile)
	if err != nil {
		log.Fatal(ctx, "failed to load gold labels",
			logger.String("path", cfg.GoldFile), logger.Error(err))
	}
	resolver, err := auth.LoadRoster(cfg.RosterFile)
	if err != nil {
		log.Fatal(ctx, "failed to load roster",
			logger.String("path", cfg.RosterFile), logger.Error(err))
	}
	metric, err := scoring.Lookup(cfg.Metric)
	if err != nil {
		log.Fatal(ctx, "unknown metric", logger.String("metric", cfg.Metric))
	}

	store, err := repository.NewGormStore(ctx, cfg.DBFile)
	if err != nil {
		log.Fatal(ctx, "failed to open ledger", logger.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "ledger close failed", logger.Error(err))
		}
	}()

	files, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatal(ctx, "failed to open upload storage", logger.Error(err))
	}

	guard := gate.New(clock,
		gate.WithCooldown(time.Duration(cfg.CooldownSeconds)*time.Second),
		gate.WithMaxSubmissions(int64(cfg.MaxSubmissions)),
		gate.WithPrivileged(cfg.AdminUser, cfg.BaselineUser),
	)

	svc := app.New(gold, scoring.New(gold, scoring.WithMetric(metric)),
		store, guard, clock, files, app.WithLogger(log))

	log.Info(ctx, "competition configured",
		logger.String("name", cfg.Name),
		logger.String("metric", metric.Name),
		logger.Int("gold_rows", gold.Len()),
		logger.Int("roster_users", resolver.Len()),
		logger.String("stage", clock.StageAt(time.Now().UTC()).String()))

	// Arm the close/terminate ledger dumps. A bad dump directory is a
	// config error and must not wait for the close-time timer to surface.
	dumper, err := dump.NewScheduler(store, clock, cfg.DumpDir)
	if err != nil {
		log.Fatal(ctx, "failed to prepare dump directory",
			logger.String("path", cfg.DumpDir), logger.Error(err))
	}
	dumper.Start(ctx)
	defer dumper.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(svc, resolver, cfg.MaxUploadBytes).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
