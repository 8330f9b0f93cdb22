package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tryonstudio/backend/internal/httpx"
)

type contextKey string

const ctxSessionKey contextKey = "session_id"

// SessionAuth is the interface used by the session middleware.
type SessionAuth interface {
	ValidateToken(ctx context.Context, token string) (string, error)
	LoggedIn(ctx context.Context) (bool, error)
}

// RequireSession accepts a request only with a valid Bearer token while the
// store's isLoggedIn flag is set. A token that outlives a logout is rejected.
func RequireSession(auth SessionAuth, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				httpx.WriteMessage(w, http.StatusUnauthorized, "missing or malformed Authorization header")
				return
			}
			sessionID, err := auth.ValidateToken(r.Context(), raw)
			if err != nil {
				httpx.WriteMessage(w, http.StatusUnauthorized, "invalid session token")
				return
			}
			in, err := auth.LoggedIn(r.Context())
			if err != nil {
				httpx.WriteError(w, log, err)
				return
			}
			if !in {
				httpx.WriteMessage(w, http.StatusUnauthorized, "signed out")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sessionID)))
		})
	}
}

// SessionFromCtx returns the authenticated session id or "".
func SessionFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(ctxSessionKey).(string)
	return id
}

// WithSession returns a context carrying the given session id.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxSessionKey, id)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
