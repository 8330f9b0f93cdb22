package models

import (
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of a try-on generation task.
type TaskStatus string

// Task status enums.
const (
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

var allowedTransitions = map[TaskStatus]map[TaskStatus]bool{
	"": {
		TaskStatusProcessing: true,
	},
	TaskStatusProcessing: {
		TaskStatusCompleted: true,
		TaskStatusFailed:    true,
	},
	TaskStatusCompleted: {},
	TaskStatusFailed:    {},
}

func CanTransition(from, to TaskStatus) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// TransitionTask moves t to the given status or fails with ErrInvalidState.
func TransitionTask(t *Task, to TaskStatus) error {
	if !CanTransition(t.Status, to) {
		return fmt.Errorf("task %s: %q -> %q: %w", t.ID, t.Status, to, ErrInvalidState)
	}
	t.Status = to
	return nil
}

// Terminal reports whether no further status transition is allowed.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Label is the title-cased status shown on task cards.
func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusProcessing:
		return "Processing"
	case TaskStatusCompleted:
		return "Completed"
	case TaskStatusFailed:
		return "Failed"
	}
	return string(s)
}

type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Video struct {
	ID              string    `json:"id"`
	TaskID          string    `json:"task_id"`
	SourceImageID   string    `json:"source_image_id"`
	URL             string    `json:"url"`
	ActionID        string    `json:"action_id"`
	Action          string    `json:"action"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

type Task struct {
	ID              string     `json:"id"`
	Status          TaskStatus `json:"status"`
	ProductImageRef string     `json:"product_image_ref"`
	HasModel        bool       `json:"has_model"`
	Context         string     `json:"context"`
	ContextLabel    string     `json:"context_label"`
	ModelType       *string    `json:"model_type,omitempty"`
	ModelTypeLabel  *string    `json:"model_type_label,omitempty"`
	TryOnImages     []Image    `json:"try_on_images"`
	Videos          []Video    `json:"videos"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a deep copy so callers never share artifact slices with the store.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	cp.TryOnImages = make([]Image, len(t.TryOnImages))
	copy(cp.TryOnImages, t.TryOnImages)
	cp.Videos = make([]Video, len(t.Videos))
	copy(cp.Videos, t.Videos)
	if t.ModelType != nil {
		v := *t.ModelType
		cp.ModelType = &v
	}
	if t.ModelTypeLabel != nil {
		v := *t.ModelTypeLabel
		cp.ModelTypeLabel = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		cp.CompletedAt = &v
	}
	return &cp
}

// Image looks up a try-on image of this task by id.
func (t *Task) Image(id string) (Image, bool) {
	for _, img := range t.TryOnImages {
		if img.ID == id {
			return img, true
		}
	}
	return Image{}, false
}
