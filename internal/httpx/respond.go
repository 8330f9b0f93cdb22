// Package httpx holds the JSON response helpers shared by the HTTP handlers.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tryonstudio/backend/internal/models"
	"github.com/tryonstudio/backend/internal/services"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Required *int   `json:"required,omitempty"`
	Balance  *int   `json:"balance,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// WriteError maps domain errors to status codes. Anything unrecognised is
// logged and reported as 500 without leaking the cause.
func WriteError(w http.ResponseWriter, log *slog.Logger, err error) {
	var ife *models.InsufficientFundsError
	switch {
	case errors.As(err, &ife):
		req, bal := ife.Required, ife.Balance
		WriteJSON(w, http.StatusPaymentRequired, ErrorResponse{Error: "insufficient credits", Required: &req, Balance: &bal})
	case errors.Is(err, models.ErrInsufficientFunds):
		WriteMessage(w, http.StatusPaymentRequired, "insufficient credits")
	case errors.Is(err, services.ErrValidation):
		WriteMessage(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		WriteMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		WriteMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrInvalidState):
		WriteMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		WriteMessage(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// 499: client closed request.
		WriteMessage(w, 499, "request cancelled")
	default:
		if log == nil {
			log = slog.Default()
		}
		log.Error("request failed", "error", err)
		WriteMessage(w, http.StatusInternalServerError, "internal error")
	}
}
