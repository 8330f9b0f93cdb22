package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/tryonstudio/backend/internal/models"
)

var demoProductImages = []string{
	"https://images.unsplash.com/photo-1434389677669-e08b4cac3105?w=200&h=200&fit=crop",
	"https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=200&h=200&fit=crop",
	"https://images.unsplash.com/photo-1525966222134-fcfa99b8ae77?w=200&h=200&fit=crop",
	"https://images.unsplash.com/photo-1560343090-f0409e92791a?w=200&h=200&fit=crop",
}

// Seed loads the demo home screen: two completed tasks with videos, one still
// processing and one failed. Seeding charges nothing. The processing task gets
// a completion scheduled like a fresh submission.
func (s *service) Seed(ctx context.Context) error {
	now := s.now().UTC()
	ctxOpt := models.ContextStudio

	type demo struct {
		id     string
		age    time.Duration
		status models.TaskStatus
		images int
		videos []models.VideoAction
		errMsg string
	}
	demos := []demo{
		{id: "1", age: 30 * time.Minute, status: models.TaskStatusCompleted, images: 4,
			videos: []models.VideoAction{models.VideoActionWalk, models.VideoActionSpin}},
		{id: "2", age: 2 * time.Hour, status: models.TaskStatusProcessing},
		{id: "3", age: 26 * time.Hour, status: models.TaskStatusCompleted, images: 6,
			videos: []models.VideoAction{models.VideoActionPose}},
		{id: "4", age: 72 * time.Hour, status: models.TaskStatusFailed,
			errMsg: "Image processing failed due to unsupported format"},
	}

	for i, d := range demos {
		created := now.Add(-d.age)
		t := &models.Task{
			ID:              d.id,
			Status:          models.TaskStatusProcessing,
			ProductImageRef: demoProductImages[i%len(demoProductImages)],
			HasModel:        true,
			Context:         ctxOpt.ID,
			ContextLabel:    ctxOpt.Label,
			TryOnImages:     []models.Image{},
			Videos:          []models.Video{},
			CreatedAt:       created,
		}
		switch d.status {
		case models.TaskStatusCompleted:
			done := created.Add(s.cfg.CompletionDelay)
			t.Status = models.TaskStatusCompleted
			t.CompletedAt = &done
			t.TryOnImages = generateImages(d.images)
			for j, a := range d.videos {
				t.Videos = append(t.Videos, generateVideo(t.ID, t.TryOnImages[j%len(t.TryOnImages)], a, done))
			}
		case models.TaskStatusFailed:
			done := created.Add(s.cfg.CompletionDelay)
			t.Status = models.TaskStatusFailed
			t.ErrorMessage = d.errMsg
			t.CompletedAt = &done
		}
		if err := s.repo.Create(ctx, t); err != nil {
			return fmt.Errorf("seed task %s: %w", d.id, err)
		}
		if t.Status == models.TaskStatusProcessing {
			if err := s.scheduler.Schedule(ctx, t.ID, s.cfg.CompletionDelay); err != nil {
				return fmt.Errorf("seed task %s: schedule completion: %w", d.id, err)
			}
		}
	}
	s.log.Info("demo tasks seeded", "count", len(demos))
	return nil
}
