package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tryonstudio/backend/internal/httpx"
	"github.com/tryonstudio/backend/internal/models"
)

// BalanceReader is the ledger subset the home screen needs.
type BalanceReader interface {
	Balance(ctx context.Context) (int, error)
}

// TaskLister is the task subset the home screen needs.
type TaskLister interface {
	List(ctx context.Context) ([]*models.Task, error)
}

type TaskCard struct {
	ID              string            `json:"id"`
	Status          models.TaskStatus `json:"status"`
	StatusLabel     string            `json:"status_label"`
	ProductImageRef string            `json:"product_image_ref"`
	TryOnCount      int               `json:"try_on_count"`
	VideoCount      int               `json:"video_count"`
	CreatedAt       time.Time         `json:"created_at"`
	RelativeDate    string            `json:"relative_date"`
}

type HomeResponse struct {
	Balance    int        `json:"balance"`
	Processing int        `json:"processing"`
	Tasks      []TaskCard `json:"tasks"`
}

type Handler struct {
	ledger BalanceReader
	tasks  TaskLister
	now    func() time.Time
	log    *slog.Logger
}

func NewHandler(ledger BalanceReader, tasks TaskLister, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{ledger: ledger, tasks: tasks, now: time.Now, log: log}
}

// GET /v1/home
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	bal, err := h.ledger.Balance(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	list, err := h.tasks.List(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	now := h.now()
	resp := HomeResponse{Balance: bal, Tasks: make([]TaskCard, 0, len(list))}
	for _, t := range list {
		if t.Status == models.TaskStatusProcessing {
			resp.Processing++
		}
		resp.Tasks = append(resp.Tasks, TaskCard{
			ID:              t.ID,
			Status:          t.Status,
			StatusLabel:     t.Status.Label(),
			ProductImageRef: t.ProductImageRef,
			TryOnCount:      len(t.TryOnImages),
			VideoCount:      len(t.Videos),
			CreatedAt:       t.CreatedAt,
			RelativeDate:    RelativeDate(t.CreatedAt, now),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// RelativeDate renders a task card timestamp: "Just now" under an hour, "Nh ago"
// under a day, "Yesterday" under two days, else a short month-day date.
func RelativeDate(at, now time.Time) string {
	hours := int(now.Sub(at) / time.Hour)
	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case hours < 48:
		return "Yesterday"
	default:
		return at.Format("Jan 2")
	}
}
