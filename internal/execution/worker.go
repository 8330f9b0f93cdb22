package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/tryonstudio/backend/internal/eventloop"
	"github.com/tryonstudio/backend/internal/models"
)

type CompleteTaskArgs struct {
	TaskID string `json:"task_id"`
}

func (CompleteTaskArgs) Kind() string { return "complete_task" }

// TaskCompleter is the contract the worker needs to resolve a processing task.
type TaskCompleter interface {
	CompleteTask(ctx context.Context, taskID string) error
}

type CompleteTaskWorker struct {
	river.WorkerDefaults[CompleteTaskArgs]
	tasks     TaskCompleter
	scheduler *RiverScheduler
	log       *slog.Logger
}

// NewCompleteTaskWorker builds the worker. scheduler may be nil; when set it is
// told once a task's job has run so the task no longer counts as pending.
func NewCompleteTaskWorker(tc TaskCompleter, scheduler *RiverScheduler, log *slog.Logger) *CompleteTaskWorker {
	if log == nil {
		log = slog.Default()
	}
	return &CompleteTaskWorker{tasks: tc, scheduler: scheduler, log: log}
}

// Work completes the task. A task that is gone or no longer processing can
// never succeed, so the job is cancelled instead of retried.
func (w *CompleteTaskWorker) Work(ctx context.Context, job *river.Job[CompleteTaskArgs]) error {
	err := w.tasks.CompleteTask(ctx, job.Args.TaskID)
	switch {
	case err == nil:
		w.forget(job.Args.TaskID)
		return nil
	case errors.Is(err, models.ErrInvalidState), errors.Is(err, models.ErrNotFound):
		w.log.Warn("completion discarded", "task_id", job.Args.TaskID, "error", err)
		w.forget(job.Args.TaskID)
		return river.JobCancel(err)
	default:
		return fmt.Errorf("complete task %s: %w", job.Args.TaskID, err)
	}
}

func (w *CompleteTaskWorker) forget(taskID string) {
	if w.scheduler != nil {
		w.scheduler.Done(taskID)
	}
}

// CompletionHandler adapts a TaskCompleter to the in-process event loop.
func CompletionHandler(tc TaskCompleter, log *slog.Logger) eventloop.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, taskID string) {
		if err := tc.CompleteTask(ctx, taskID); err != nil {
			log.Warn("completion discarded", "task_id", taskID, "error", err)
		}
	}
}
