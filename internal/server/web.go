package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebService wraps an http.Server as a lifecycle Service with graceful
// shutdown.
type WebService struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewWebService creates a WebService listening on addr with the given
// handler.
//
// Precondition: addr must be a valid listen address; handler and logger
// must be non-nil; shutdownTimeout must be >= 0 (0 means wait
// indefinitely).
func NewWebService(addr string, handler http.Handler, shutdownTimeout time.Duration, logger *zap.Logger) *WebService {
	return &WebService{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
//
// Postcondition: Returns nil after a graceful Stop, or the listener error.
func (w *WebService) Start() error {
	w.logger.Info("http server listening", zap.String("addr", w.srv.Addr))
	err := w.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the server down gracefully, bounded by the shutdown timeout.
func (w *WebService) Stop() {
	ctx := context.Background()
	if w.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.shutdownTimeout)
		defer cancel()
	}
	if err := w.srv.Shutdown(ctx); err != nil {
		w.logger.Warn("http shutdown", zap.Error(err))
	}
}
