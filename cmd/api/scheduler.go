package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/tryonstudio/backend/internal/config"
	"github.com/tryonstudio/backend/internal/eventloop"
	"github.com/tryonstudio/backend/internal/execution"
	"github.com/tryonstudio/backend/internal/tasks"
)

// scheduler owns the task completion backend. Both backends need the task
// service to run completions, and the service needs the scheduler, so the
// runner is attached in start.
type scheduler struct {
	tasks.Scheduler
	start func(ctx context.Context, svc execution.TaskCompleter) error
	stop  func()
}

func newScheduler(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*scheduler, error) {
	if cfg.SchedulerBackend == config.SchedulerRiver {
		return newRiverScheduler(cfg, pool, logger)
	}
	return newLoopScheduler(logger), nil
}

func newLoopScheduler(logger *slog.Logger) *scheduler {
	var handle eventloop.Handler
	loop := eventloop.New(nil, func(ctx context.Context, taskID string) {
		handle(ctx, taskID)
	}, logger)

	s := &scheduler{Scheduler: execution.NewLoopScheduler(loop)}
	var cancel context.CancelFunc = func() {}
	s.start = func(ctx context.Context, svc execution.TaskCompleter) error {
		handle = execution.CompletionHandler(svc, logger)
		var loopCtx context.Context
		loopCtx, cancel = context.WithCancel(ctx)
		go loop.Run(loopCtx)
		slog.Info("In-process completion loop started")
		return nil
	}
	s.stop = func() { cancel() }
	return s
}

func newRiverScheduler(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*scheduler, error) {
	ctx := context.Background()
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return nil, fmt.Errorf("create river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("river migrate up: %w", err)
	}
	slog.Info("River migrations applied")

	rs := execution.NewRiverScheduler()
	s := &scheduler{Scheduler: rs}
	var client *river.Client[pgx.Tx]

	s.start = func(ctx context.Context, svc execution.TaskCompleter) error {
		workers := river.NewWorkers()
		river.AddWorker(workers, execution.NewCompleteTaskWorker(svc, rs, logger))

		c, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
			Queues: map[string]river.QueueConfig{
				river.QueueDefault: {MaxWorkers: cfg.RiverMaxWorkers},
			},
			Workers: workers,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("create river client: %w", err)
		}
		rs.Bind(c)
		if err := c.Start(ctx); err != nil {
			return fmt.Errorf("start river client: %w", err)
		}
		client = c
		slog.Info("River client started", "max_workers", cfg.RiverMaxWorkers)
		return nil
	}
	s.stop = func() {
		if client == nil {
			return
		}
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			slog.Warn("River client stop", "error", err)
		}
	}
	return s, nil
}
