package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tryonstudio/backend/internal/auth"
	"github.com/tryonstudio/backend/internal/catalog"
	"github.com/tryonstudio/backend/internal/dashboard"
	"github.com/tryonstudio/backend/internal/httpx"
	"github.com/tryonstudio/backend/internal/ledger"
	"github.com/tryonstudio/backend/internal/middleware"
	"github.com/tryonstudio/backend/internal/tasks"
)

type Handlers struct {
	Auth      *auth.Handler
	Ledger    *ledger.Handler
	Tasks     *tasks.Handler
	Catalog   *catalog.Handler
	Dashboard *dashboard.Handler
}

type Options struct {
	Session   middleware.SessionAuth
	Balance   middleware.BalanceChecker
	ImageCost int
	Logger    *slog.Logger
}

// New returns the API handler. Session and catalog discovery are public;
// everything else under /v1 needs a signed-in session. Only task submission is
// pre-checked for funds: a video request must report the task's state first,
// which the service does before its own balance check.
func New(h Handlers, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.AccessLog(log),
		chimw.Recoverer,
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/session", h.Auth.GetSession)
		r.Post("/session", h.Auth.Login)
		r.Get("/options", h.Tasks.Options)
		r.Get("/packages", h.Catalog.ListPackages)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(opts.Session, log))

			r.Delete("/session", h.Auth.Logout)
			r.Get("/credits", h.Ledger.GetBalance)
			r.Get("/credit-ledger", h.Ledger.ListEntries)
			r.Get("/home", h.Dashboard.Home)
			r.Post("/uploads", h.Tasks.Upload)
			r.Post("/purchases", h.Catalog.Purchase)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.Tasks.ListTasks)
				r.With(middleware.CreditCheck(opts.Balance, opts.ImageCost, log)).Post("/", h.Tasks.CreateTask)
				r.Get("/{id}", h.Tasks.GetTask)
				r.Put("/{id}/watch", h.Tasks.Watch)
				r.Delete("/{id}/watch", h.Tasks.Unwatch)
				r.Post("/{id}/videos", h.Tasks.CreateVideo)
			})
			r.Get("/videos/{id}", h.Tasks.GetVideo)
		})
	})
	return r
}
