package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tryonstudio/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockAuth struct {
	validToken string
	loggedIn   bool
	flagErr    error
}

func (m *mockAuth) ValidateToken(_ context.Context, token string) (string, error) {
	if token != m.validToken {
		return "", models.ErrUnauthorized
	}
	return "session-1", nil
}

func (m *mockAuth) LoggedIn(context.Context) (bool, error) {
	return m.loggedIn, m.flagErr
}

type mockBalance struct{ balance int }

func (m *mockBalance) Check(_ context.Context, amount int) error {
	if amount > m.balance {
		return &models.InsufficientFundsError{Required: amount, Balance: m.balance}
	}
	return nil
}

// ok200 proves the middleware let the request through.
var ok200 = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// ---------------------------------------------------------------------------
// RequireSession
// ---------------------------------------------------------------------------

func TestRequireSession(t *testing.T) {
	cases := []struct {
		name   string
		header string
		auth   *mockAuth
		want   int
	}{
		{"valid", "Bearer good", &mockAuth{validToken: "good", loggedIn: true}, http.StatusOK},
		{"lower-case scheme", "bearer good", &mockAuth{validToken: "good", loggedIn: true}, http.StatusOK},
		{"missing header", "", &mockAuth{validToken: "good", loggedIn: true}, http.StatusUnauthorized},
		{"basic scheme", "Basic Zm9vOmJhcg==", &mockAuth{validToken: "good", loggedIn: true}, http.StatusUnauthorized},
		{"bad token", "Bearer bad", &mockAuth{validToken: "good", loggedIn: true}, http.StatusUnauthorized},
		{"signed out", "Bearer good", &mockAuth{validToken: "good", loggedIn: false}, http.StatusUnauthorized},
		{"store error", "Bearer good", &mockAuth{validToken: "good", flagErr: errors.New("redis down")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotSession string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSession = SessionFromCtx(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/v1/credits", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			RequireSession(tc.auth, nil)(next).ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status: got %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
			if tc.want == http.StatusOK && gotSession != "session-1" {
				t.Errorf("session in ctx: got %q", gotSession)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// CreditCheck
// ---------------------------------------------------------------------------

func TestCreditCheck_Sufficient(t *testing.T) {
	rec := httptest.NewRecorder()
	CreditCheck(&mockBalance{balance: 10}, 10, nil)(ok200).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreditCheck_Insufficient(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { called = true })

	rec := httptest.NewRecorder()
	CreditCheck(&mockBalance{balance: 15}, 20, nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
	if called {
		t.Error("handler must not run when credits are short")
	}
	if !strings.Contains(rec.Body.String(), `"required":20`) || !strings.Contains(rec.Body.String(), `"balance":15`) {
		t.Errorf("body should carry required/balance: %s", rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// AccessLog
// ---------------------------------------------------------------------------

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	teapot := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	rec := httptest.NewRecorder()
	AccessLog(log)(teapot).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/home", nil))

	out := buf.String()
	for _, want := range []string{`"path":"/v1/home"`, `"status":418`, `"method":"GET"`, `"bytes":15`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %s", want, out)
		}
	}
}
