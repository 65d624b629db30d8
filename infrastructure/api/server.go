package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"mp4-splitter/application/session"
	"mp4-splitter/domain/history"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Addr      string
	Session   *session.Session
	History   history.Store // optional
	Logger    *slog.Logger
	StartTime time.Time
	Version   string
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:        cfg.Addr,
			Handler:     router,
			ReadTimeout: 15 * time.Second,
			// exports and previews stream for as long as they need
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
