package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tryonstudio/backend/internal/models"
)

// Repository holds tasks for the lifetime of the process. Every read returns a
// clone, and writes go through Update so a task is never mutated outside the lock.
type Repository struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task
	seq   map[string]uint64
	next  uint64
}

func NewRepository() *Repository {
	return &Repository{
		tasks: make(map[string]*models.Task),
		seq:   make(map[string]uint64),
	}
}

// Create stores t. An existing id is rejected with ErrInvalidState.
func (r *Repository) Create(_ context.Context, t *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("task %s already exists: %w", t.ID, models.ErrInvalidState)
	}
	r.next++
	r.tasks[t.ID] = t.Clone()
	r.seq[t.ID] = r.next
	return nil
}

func (r *Repository) Exists(_ context.Context, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tasks[id]
	return ok
}

func (r *Repository) GetByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	return t.Clone(), nil
}

// Update applies fn to the stored task under the write lock. If fn returns an
// error the task is left untouched.
func (r *Repository) Update(_ context.Context, id string, fn func(t *models.Task) error) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	work := cur.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	r.tasks[id] = work
	return work.Clone(), nil
}

// List returns all tasks newest first.
func (r *Repository) List(_ context.Context) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*models.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		list = append(list, t.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return r.seq[a.ID] > r.seq[b.ID]
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return list, nil
}

// FindVideo looks up a video across all tasks.
func (r *Repository) FindVideo(_ context.Context, videoID string) (*models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		for _, v := range t.Videos {
			if v.ID == videoID {
				cp := v
				return &cp, nil
			}
		}
	}
	return nil, fmt.Errorf("video %s: %w", videoID, models.ErrNotFound)
}
