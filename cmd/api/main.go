package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"github.com/tryonstudio/backend/internal/auth"
	"github.com/tryonstudio/backend/internal/catalog"
	"github.com/tryonstudio/backend/internal/config"
	"github.com/tryonstudio/backend/internal/dashboard"
	"github.com/tryonstudio/backend/internal/ledger"
	"github.com/tryonstudio/backend/internal/router"
	"github.com/tryonstudio/backend/internal/services"
	"github.com/tryonstudio/backend/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var pool *pgxpool.Pool
	if cfg.NeedsDatabase() {
		p, err := openPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer p.Close()
		pool = p
	}

	store, closeStore, err := openStore(ctx, cfg, pool)
	if err != nil {
		return err
	}
	defer closeStore()

	// Ledger
	ledgerSvc := ledger.NewService(ledger.NewRepository(store, cfg.StartingCredits), ledger.NewMemoryJournal(), logger)

	// Tasks: the scheduler is wired around the service, see scheduler.go.
	sched, err := newScheduler(cfg, pool, logger)
	if err != nil {
		return err
	}
	taskSvc := tasks.NewService(tasks.NewRepository(), ledgerSvc, sched, tasks.Config{
		ImageCost:       cfg.ImageCreationCost,
		VideoCost:       cfg.VideoCreationCost,
		BatchSize:       cfg.TryOnBatchSize,
		CompletionDelay: cfg.CompletionDelay,
		VideoLatency:    cfg.VideoLatency,
	}, logger)
	if err := sched.start(ctx, taskSvc); err != nil {
		return err
	}
	defer sched.stop()

	if cfg.SeedDemoTasks {
		if err := taskSvc.Seed(ctx); err != nil {
			return err
		}
		slog.Info("Demo tasks seeded")
	}

	authSvc := auth.NewService(store, ledgerSvc, auth.Config{
		Secret:          []byte(cfg.JWTSecret),
		TokenTTL:        cfg.SessionTTL,
		LoginLatency:    cfg.LoginLatency,
		StartingCredits: cfg.StartingCredits,
	}, logger)
	catalogSvc := catalog.NewService(ledgerSvc, cfg.PurchaseLatency, logger)

	validator, err := services.NewValidator()
	if err != nil {
		return err
	}

	api := router.New(router.Handlers{
		Auth:      auth.NewHandler(authSvc, logger),
		Ledger:    ledger.NewHandler(ledgerSvc, logger),
		Tasks:     tasks.NewHandler(taskSvc, validator, cfg.UploadLatency, logger),
		Catalog:   catalog.NewHandler(catalogSvc, validator, logger),
		Dashboard: dashboard.NewHandler(ledgerSvc, taskSvc, logger),
	}, router.Options{
		Session:   authSvc,
		Balance:   ledgerSvc,
		ImageCost: cfg.ImageCreationCost,
		Logger:    logger,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
	}).Handler(api)

	srv := newHTTPServer(cfg, corsHandler)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", srv.Addr(), "store", cfg.StoreBackend, "scheduler", cfg.SchedulerBackend)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
