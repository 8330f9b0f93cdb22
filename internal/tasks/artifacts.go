package tasks

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tryonstudio/backend/internal/models"
)

// Placeholder renders handed out as generated try-on images, in order.
var tryOnImageURLs = []string{
	"https://images.unsplash.com/photo-1515886657613-9f3515b0c78f?w=400&h=500&fit=crop",
	"https://images.unsplash.com/photo-1529139574466-a303027c1d8b?w=400&h=500&fit=crop",
	"https://images.unsplash.com/photo-1509631179647-0177331693ae?w=400&h=500&fit=crop",
	"https://images.unsplash.com/photo-1496747611176-843222e1e57c?w=400&h=500&fit=crop",
}

const (
	videoURLFormat       = "https://example.com/videos/%s.mp4"
	videoDurationSeconds = 15
)

// generateImages returns n synthetic try-on images, cycling the placeholder set.
func generateImages(n int) []models.Image {
	out := make([]models.Image, n)
	for i := range out {
		out[i] = models.Image{
			ID:  uuid.NewString(),
			URL: tryOnImageURLs[i%len(tryOnImageURLs)],
		}
	}
	return out
}

func generateVideo(taskID string, src models.Image, action models.VideoAction, now time.Time) models.Video {
	id := uuid.NewString()
	return models.Video{
		ID:              id,
		TaskID:          taskID,
		SourceImageID:   src.ID,
		URL:             fmt.Sprintf(videoURLFormat, id),
		ActionID:        action.ID,
		Action:          action.Label,
		ThumbnailURL:    src.URL,
		DurationSeconds: videoDurationSeconds,
		CreatedAt:       now,
	}
}
