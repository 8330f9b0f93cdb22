package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tryonstudio/backend/internal/httpx"
)

// BalanceChecker fails with an insufficient-funds error when amount exceeds the balance.
type BalanceChecker interface {
	Check(ctx context.Context, amount int) error
}

// CreditCheck rejects a paid operation with 402 before the handler runs when
// the balance cannot cover cost. The ledger still re-checks when it debits.
func CreditCheck(b BalanceChecker, cost int, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := b.Check(r.Context(), cost); err != nil {
				httpx.WriteError(w, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
