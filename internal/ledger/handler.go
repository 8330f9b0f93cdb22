package ledger

import (
	"log/slog"
	"net/http"

	"github.com/tryonstudio/backend/internal/httpx"
	"github.com/tryonstudio/backend/internal/models"
)

type BalanceResponse struct {
	Balance int `json:"balance"`
}

type EntriesResponse struct {
	Balance int                    `json:"balance"`
	Spent   int                    `json:"spent"`
	Earned  int                    `json:"earned"`
	Entries []*models.CreditLedger `json:"entries"`
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

// GET /v1/credits
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := h.svc.Balance(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, BalanceResponse{Balance: bal})
}

// GET /v1/credit-ledger
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	bal, err := h.svc.Balance(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	entries, err := h.svc.Entries(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	resp := EntriesResponse{Balance: bal, Entries: entries}
	for _, e := range entries {
		if e.IsDebit() {
			resp.Spent += e.Amount
		} else {
			resp.Earned += e.Amount
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
