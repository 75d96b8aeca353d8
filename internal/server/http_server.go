package server

import (
	"context"
	"net/http"
	"time"

	"assessment-service/internal/config"
	"assessment-service/internal/logging"
)

// HTTPServer оборачивает http.Server с доп. логикой.
type HTTPServer struct {
	srv    *http.Server
	logger *logging.Logger
}

// NewHTTPServer создаёт HTTP-сервер с заданной конфигурацией.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler, logger *logging.Logger) *HTTPServer {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &HTTPServer{
		srv:    srv,
		logger: logger,
	}
}

// Start запускает HTTP-сервер.
func (s *HTTPServer) Start() error {
	s.logger.Info("http server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown выполняет graceful shutdown HTTP-сервера.
// Начатые операции workflow дорабатывают в пределах таймаута.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("http server draining")

	shutdownCh := make(chan error, 1)

	go func() {
		shutdownCh <- s.srv.Shutdown(ctx)
	}()

	select {
	case err := <-shutdownCh:
		return err

	case <-ctx.Done():
		return ctx.Err()

	case <-time.After(10 * time.Second):
		return context.DeadlineExceeded
	}
}
