package main

import (
	"context"
	"net/http"
	"time"

	"github.com/tryonstudio/backend/internal/config"
)

type httpServer struct {
	server *http.Server
}

func newHTTPServer(cfg *config.Config, handler http.Handler) *httpServer {
	return &httpServer{server: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

func (s *httpServer) Addr() string { return s.server.Addr }

func (s *httpServer) Start() error {
	return s.server.ListenAndServe()
}

func (s *httpServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
