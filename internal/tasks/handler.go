package tasks

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tryonstudio/backend/internal/httpx"
	"github.com/tryonstudio/backend/internal/models"
	"github.com/tryonstudio/backend/internal/services"
)

const maxBodyBytes = 64 << 10

type CreateTaskRequest struct {
	ID              string  `json:"id,omitempty"`
	ProductImageRef string  `json:"product_image_ref"`
	HasModel        bool    `json:"has_model"`
	Context         string  `json:"context"`
	CustomContext   string  `json:"custom_context,omitempty"`
	ModelType       *string `json:"model_type,omitempty"`
	CustomModelType string  `json:"custom_model_type,omitempty"`
}

type CreateVideoRequest struct {
	SourceImageID string `json:"source_image_id"`
	Action        string `json:"action"`
}

type WatchResponse struct {
	TaskID    string            `json:"task_id"`
	Status    models.TaskStatus `json:"status"`
	Scheduled bool              `json:"scheduled"`
}

type OptionsResponse struct {
	Contexts     []models.Context     `json:"contexts"`
	ModelTypes   []models.ModelType   `json:"model_types"`
	VideoActions []models.VideoAction `json:"video_actions"`
	ImageCost    int                  `json:"image_cost"`
	VideoCost    int                  `json:"video_cost"`
	BatchSize    int                  `json:"batch_size"`
}

type Handler struct {
	svc           Service
	validator     *services.Validator
	uploadLatency time.Duration
	log           *slog.Logger
}

func NewHandler(svc Service, validator *services.Validator, uploadLatency time.Duration, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, validator: validator, uploadLatency: uploadLatency, log: log}
}

// decode validates the raw body against schema before unmarshalling into dst.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "could not read body")
		return false
	}
	if err := h.validator.Validate(schema, body); err != nil {
		httpx.WriteError(w, h.log, err)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// Options serves the create wizard and video sheet choices.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	img, vid := h.svc.Costs()
	httpx.WriteJSON(w, http.StatusOK, OptionsResponse{
		Contexts:     models.Contexts,
		ModelTypes:   models.ModelTypes,
		VideoActions: models.VideoActions,
		ImageCost:    img,
		VideoCost:    vid,
		BatchSize:    h.svc.BatchSize(),
	})
}

// CreateTask handles POST /v1/tasks. The task is accepted in processing state
// and completes in the background.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !h.decode(w, r, services.SchemaCreateTask, &req) {
		return
	}
	task, err := h.svc.Submit(r.Context(), SubmitRequest{
		ID:              req.ID,
		ProductImageRef: req.ProductImageRef,
		HasModel:        req.HasModel,
		Context:         req.Context,
		CustomContext:   req.CustomContext,
		ModelType:       req.ModelType,
		CustomModelType: req.CustomModelType,
	})
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.Header().Set("Location", "/v1/tasks/"+task.ID)
	httpx.WriteJSON(w, http.StatusAccepted, task)
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, task)
}

// Watch handles PUT /v1/tasks/{id}/watch, sent when the detail view opens.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	scheduled, err := h.svc.Attach(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	h.writeWatch(w, r, id, scheduled)
}

// Unwatch handles DELETE /v1/tasks/{id}/watch, sent when the detail view closes.
func (h *Handler) Unwatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.Detach(r.Context(), id); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	h.writeWatch(w, r, id, false)
}

func (h *Handler) writeWatch(w http.ResponseWriter, r *http.Request, id string, scheduled bool) {
	task, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, WatchResponse{TaskID: id, Status: task.Status, Scheduled: scheduled})
}

// CreateVideo handles POST /v1/tasks/{id}/videos. It blocks for the
// generation latency; a client disconnect before then charges nothing.
func (h *Handler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req CreateVideoRequest
	if !h.decode(w, r, services.SchemaCreateVideo, &req) {
		return
	}
	video, err := h.svc.CreateVideo(r.Context(), chi.URLParam(r, "id"), req.SourceImageID, req.Action)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, video)
}

func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	video, err := h.svc.GetVideo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, video)
}
