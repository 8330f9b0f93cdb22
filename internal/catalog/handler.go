package catalog

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/tryonstudio/backend/internal/httpx"
	"github.com/tryonstudio/backend/internal/services"
)

type PurchaseRequest struct {
	PackageID string `json:"package_id"`
}

type PackageResponse struct {
	Package
	TotalCredits int    `json:"total_credits"`
	BonusLabel   string `json:"bonus_label,omitempty"`
}

type Handler struct {
	svc       Service
	validator *services.Validator
	log       *slog.Logger
}

func NewHandler(svc Service, validator *services.Validator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, validator: validator, log: log}
}

func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	list := h.svc.List()
	resp := make([]PackageResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, PackageResponse{Package: p, TotalCredits: p.TotalCredits(), BonusLabel: p.BonusLabel()})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// Purchase handles POST /v1/purchases. It blocks for the payment latency.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<10))
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "could not read body")
		return
	}
	if err := h.validator.Validate(services.SchemaPurchase, body); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	var req PurchaseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	receipt, err := h.svc.Purchase(r.Context(), req.PackageID)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, receipt)
}
