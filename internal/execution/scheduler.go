package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/tryonstudio/backend/internal/eventloop"
)

// LoopScheduler defers completions on the in-process event loop.
type LoopScheduler struct {
	loop *eventloop.Loop
}

func NewLoopScheduler(loop *eventloop.Loop) *LoopScheduler {
	return &LoopScheduler{loop: loop}
}

func (s *LoopScheduler) Schedule(_ context.Context, taskID string, delay time.Duration) error {
	return s.loop.Schedule(taskID, delay)
}

func (s *LoopScheduler) Cancel(_ context.Context, taskID string) (bool, error) {
	return s.loop.Cancel(taskID), nil
}

func (s *LoopScheduler) Pending(_ context.Context, taskID string) (bool, error) {
	return s.loop.Pending(taskID), nil
}

// JobClient is the subset of *river.Client used for scheduled completions.
type JobClient interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
	JobCancel(ctx context.Context, jobID int64) (*rivertype.JobRow, error)
}

var ErrClientNotBound = errors.New("river client not bound")

// RiverScheduler defers completions as scheduled River jobs. The client is
// bound after construction because the worker it runs needs the task service,
// which in turn needs this scheduler.
type RiverScheduler struct {
	mu      sync.Mutex
	client  JobClient
	pending map[string]int64
	now     func() time.Time
}

func NewRiverScheduler() *RiverScheduler {
	return &RiverScheduler{pending: make(map[string]int64), now: time.Now}
}

func (s *RiverScheduler) Bind(client JobClient) {
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
}

func (s *RiverScheduler) Schedule(ctx context.Context, taskID string, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return ErrClientNotBound
	}
	if _, ok := s.pending[taskID]; ok {
		return eventloop.ErrAlreadyScheduled
	}
	res, err := s.client.Insert(ctx, CompleteTaskArgs{TaskID: taskID}, &river.InsertOpts{
		ScheduledAt: s.now().Add(delay),
	})
	if err != nil {
		return fmt.Errorf("insert complete_task job: %w", err)
	}
	s.pending[taskID] = res.Job.ID
	return nil
}

func (s *RiverScheduler) Cancel(ctx context.Context, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobID, ok := s.pending[taskID]
	if !ok {
		return false, nil
	}
	if s.client == nil {
		return false, ErrClientNotBound
	}
	row, err := s.client.JobCancel(ctx, jobID)
	if err != nil {
		return false, fmt.Errorf("cancel job %d: %w", jobID, err)
	}
	delete(s.pending, taskID)
	return row == nil || row.State == rivertype.JobStateCancelled, nil
}

func (s *RiverScheduler) Pending(_ context.Context, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[taskID]
	return ok, nil
}

// Done forgets the job for taskID once the worker has run it.
func (s *RiverScheduler) Done(taskID string) {
	s.mu.Lock()
	delete(s.pending, taskID)
	s.mu.Unlock()
}
