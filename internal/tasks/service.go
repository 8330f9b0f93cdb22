package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tryonstudio/backend/internal/latency"
	"github.com/tryonstudio/backend/internal/ledger"
	"github.com/tryonstudio/backend/internal/models"
)

var (
	ErrNotFound          = models.ErrNotFound
	ErrInvalidState      = models.ErrInvalidState
	ErrInvalidInput      = models.ErrInvalidInput
	ErrInsufficientFunds = ledger.ErrInsufficientFunds
)

// Scheduler defers task completion. Implementations call back into
// CompleteTask when the delay has elapsed.
type Scheduler interface {
	Schedule(ctx context.Context, taskID string, delay time.Duration) error
	Cancel(ctx context.Context, taskID string) (bool, error)
	Pending(ctx context.Context, taskID string) (bool, error)
}

type Config struct {
	ImageCost       int
	VideoCost       int
	BatchSize       int
	CompletionDelay time.Duration
	VideoLatency    time.Duration
}

func DefaultConfig() Config {
	return Config{
		ImageCost:       10,
		VideoCost:       20,
		BatchSize:       4,
		CompletionDelay: 4 * time.Second,
		VideoLatency:    2 * time.Second,
	}
}

// SubmitRequest is the outcome of the create wizard. Context and ModelType are
// option ids; the Custom* fields carry free text for the "custom" option.
type SubmitRequest struct {
	ID              string
	ProductImageRef string
	HasModel        bool
	Context         string
	CustomContext   string
	ModelType       *string
	CustomModelType string
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*models.Task, error)
	CompleteTask(ctx context.Context, taskID string) error
	FailTask(ctx context.Context, taskID, reason string) error
	CreateVideo(ctx context.Context, taskID, sourceImageID, actionID string) (*models.Video, error)
	Get(ctx context.Context, taskID string) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	GetVideo(ctx context.Context, videoID string) (*models.Video, error)
	Detach(ctx context.Context, taskID string) (bool, error)
	Attach(ctx context.Context, taskID string) (bool, error)
	Costs() (image, video int)
	BatchSize() int
}

type service struct {
	// mu serialises the check-debit-create and check-debit-append sequences.
	mu        sync.Mutex
	repo      *Repository
	ledger    ledger.Service
	scheduler Scheduler
	cfg       Config
	now       func() time.Time
	log       *slog.Logger
}

// NewService returns *service so main can hand it to the completion worker as
// its TaskCompleter.
func NewService(repo *Repository, l ledger.Service, scheduler Scheduler, cfg Config, log *slog.Logger) *service {
	if log == nil {
		log = slog.Default()
	}
	return &service{repo: repo, ledger: l, scheduler: scheduler, cfg: cfg, now: time.Now, log: log}
}

var _ Service = (*service)(nil)

func (s *service) Costs() (int, int) {
	return s.cfg.ImageCost, s.cfg.VideoCost
}

func (s *service) BatchSize() int {
	return s.cfg.BatchSize
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*models.Task, error) {
	task, err := s.buildTask(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo.Exists(ctx, task.ID) {
		return nil, fmt.Errorf("task %s already exists: %w", task.ID, ErrInvalidState)
	}
	id := task.ID
	if _, err := s.ledger.Debit(ctx, s.cfg.ImageCost, ledger.Entry{Type: models.CreditEntryTaskCharge, TaskID: &id}); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, task); err != nil {
		s.refund(ctx, id, s.cfg.ImageCost)
		return nil, err
	}
	if err := s.scheduler.Schedule(ctx, id, s.cfg.CompletionDelay); err != nil {
		s.log.Error("schedule completion failed", "task_id", id, "error", err)
		_, _ = s.repo.Update(ctx, id, func(t *models.Task) error {
			return s.fail(t, "Task could not be scheduled")
		})
		s.refund(ctx, id, s.cfg.ImageCost)
		return nil, fmt.Errorf("schedule completion: %w", err)
	}
	s.log.Info("task submitted", "task_id", id, "context", task.Context, "has_model", task.HasModel)
	return task, nil
}

func (s *service) buildTask(req SubmitRequest) (*models.Task, error) {
	if strings.TrimSpace(req.ProductImageRef) == "" {
		return nil, fmt.Errorf("product image is required: %w", ErrInvalidInput)
	}
	ctxOpt, ok := models.ParseContext(req.Context)
	if !ok {
		return nil, fmt.Errorf("unknown context %q: %w", req.Context, ErrInvalidInput)
	}
	ctxLabel := ctxOpt.Label
	if ctxOpt.ID == models.CustomOptionID {
		ctxLabel = strings.TrimSpace(req.CustomContext)
		if ctxLabel == "" {
			return nil, fmt.Errorf("custom context requires a description: %w", ErrInvalidInput)
		}
	}

	task := &models.Task{
		ID:              req.ID,
		Status:          models.TaskStatusProcessing,
		ProductImageRef: req.ProductImageRef,
		HasModel:        req.HasModel,
		Context:         ctxOpt.ID,
		ContextLabel:    ctxLabel,
		TryOnImages:     []models.Image{},
		Videos:          []models.Video{},
		CreatedAt:       s.now().UTC(),
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	if !req.HasModel {
		if req.ModelType == nil || *req.ModelType == "" {
			return nil, fmt.Errorf("model type is required when the photo has no model: %w", ErrInvalidInput)
		}
		mt, ok := models.ParseModelType(*req.ModelType)
		if !ok {
			return nil, fmt.Errorf("unknown model type %q: %w", *req.ModelType, ErrInvalidInput)
		}
		label := mt.Label
		if mt.ID == models.CustomOptionID {
			label = strings.TrimSpace(req.CustomModelType)
			if label == "" {
				return nil, fmt.Errorf("custom model type requires a description: %w", ErrInvalidInput)
			}
		}
		id := mt.ID
		task.ModelType = &id
		task.ModelTypeLabel = &label
	}
	return task, nil
}

// CompleteTask is the completion timer callback.
func (s *service) CompleteTask(ctx context.Context, taskID string) error {
	t, err := s.repo.Update(ctx, taskID, func(t *models.Task) error {
		if err := models.TransitionTask(t, models.TaskStatusCompleted); err != nil {
			return err
		}
		now := s.now().UTC()
		t.TryOnImages = generateImages(s.cfg.BatchSize)
		t.CompletedAt = &now
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("task completed", "task_id", taskID, "images", len(t.TryOnImages))
	return nil
}

func (s *service) FailTask(ctx context.Context, taskID, reason string) error {
	if _, err := s.repo.Update(ctx, taskID, func(t *models.Task) error {
		return s.fail(t, reason)
	}); err != nil {
		return err
	}
	if _, err := s.scheduler.Cancel(ctx, taskID); err != nil {
		s.log.Warn("cancel completion failed", "task_id", taskID, "error", err)
	}
	s.log.Info("task failed", "task_id", taskID, "reason", reason)
	return nil
}

func (s *service) fail(t *models.Task, reason string) error {
	if err := models.TransitionTask(t, models.TaskStatusFailed); err != nil {
		return err
	}
	now := s.now().UTC()
	t.ErrorMessage = reason
	t.CompletedAt = &now
	return nil
}

// CreateVideo checks the task and funds, waits out the generation latency,
// then debits and appends. A cancelled ctx during the wait charges nothing.
func (s *service) CreateVideo(ctx context.Context, taskID, sourceImageID, actionID string) (*models.Video, error) {
	action, ok := models.ParseVideoAction(actionID)
	if !ok {
		return nil, fmt.Errorf("unknown video action %q: %w", actionID, ErrInvalidInput)
	}
	if _, err := s.videoSource(ctx, taskID, sourceImageID); err != nil {
		return nil, err
	}
	if err := s.ledger.Check(ctx, s.cfg.VideoCost); err != nil {
		return nil, err
	}

	if err := latency.Wait(ctx, s.cfg.VideoLatency); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.videoSource(ctx, taskID, sourceImageID)
	if err != nil {
		return nil, err
	}
	id := taskID
	if _, err := s.ledger.Debit(ctx, s.cfg.VideoCost, ledger.Entry{Type: models.CreditEntryVideoCharge, TaskID: &id}); err != nil {
		return nil, err
	}
	video := generateVideo(taskID, src, action, s.now().UTC())
	if _, err := s.repo.Update(ctx, taskID, func(t *models.Task) error {
		if t.Status != models.TaskStatusCompleted {
			return fmt.Errorf("task %s is %s: %w", taskID, t.Status, ErrInvalidState)
		}
		t.Videos = append(t.Videos, video)
		return nil
	}); err != nil {
		s.refund(ctx, taskID, s.cfg.VideoCost)
		return nil, err
	}
	s.log.Info("video created", "task_id", taskID, "video_id", video.ID, "action", action.ID)
	return &video, nil
}

// videoSource returns the source image when the task can take a new video.
func (s *service) videoSource(ctx context.Context, taskID, imageID string) (models.Image, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return models.Image{}, err
	}
	if t.Status != models.TaskStatusCompleted {
		return models.Image{}, fmt.Errorf("task %s is %s: %w", taskID, t.Status, ErrInvalidState)
	}
	img, ok := t.Image(imageID)
	if !ok {
		return models.Image{}, fmt.Errorf("image %s on task %s: %w", imageID, taskID, ErrNotFound)
	}
	return img, nil
}

func (s *service) Get(ctx context.Context, taskID string) (*models.Task, error) {
	return s.repo.GetByID(ctx, taskID)
}

func (s *service) List(ctx context.Context) ([]*models.Task, error) {
	return s.repo.List(ctx)
}

func (s *service) GetVideo(ctx context.Context, videoID string) (*models.Video, error) {
	return s.repo.FindVideo(ctx, videoID)
}

// Detach drops the pending completion of a task whose view was left. The task
// stays processing until it is attached again.
func (s *service) Detach(ctx context.Context, taskID string) (bool, error) {
	if _, err := s.repo.GetByID(ctx, taskID); err != nil {
		return false, err
	}
	return s.scheduler.Cancel(ctx, taskID)
}

// Attach restarts the completion delay for a processing task with nothing
// pending. It reports whether a completion was scheduled.
func (s *service) Attach(ctx context.Context, taskID string) (bool, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return false, err
	}
	if t.Status.Terminal() {
		return false, nil
	}
	pending, err := s.scheduler.Pending(ctx, taskID)
	if err != nil {
		return false, err
	}
	if pending {
		return false, nil
	}
	if err := s.scheduler.Schedule(ctx, taskID, s.cfg.CompletionDelay); err != nil {
		return false, fmt.Errorf("schedule completion: %w", err)
	}
	return true, nil
}

func (s *service) refund(ctx context.Context, taskID string, amount int) {
	id := taskID
	if _, err := s.ledger.Credit(ctx, amount, ledger.Entry{Type: models.CreditEntryRefund, TaskID: &id}); err != nil {
		s.log.Error("refund failed", "task_id", taskID, "amount", amount, "error", err)
	}
}
