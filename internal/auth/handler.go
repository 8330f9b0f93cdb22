package auth

import (
	"log/slog"
	"net/http"

	"github.com/tryonstudio/backend/internal/httpx"
	"github.com/tryonstudio/backend/internal/middleware"
)

type SessionResponse struct {
	LoggedIn bool   `json:"logged_in"`
	Landing  string `json:"landing"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// GetSession serves the splash screen's landing decision.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	landing, err := h.svc.Landing(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, SessionResponse{LoggedIn: landing == LandingHome, Landing: landing})
}

// Login handles POST /v1/session ("Continue with Google").
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Login(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context()); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	h.log.Info("signed out", "session_id", middleware.SessionFromCtx(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
