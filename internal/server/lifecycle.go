// Package server provides application lifecycle management and the HTTP
// service hosting the websocket endpoint.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service represents a long-running component that can be started and
// stopped.
type Service interface {
	// Start begins the service. It should block until the service is
	// stopped or an error occurs.
	Start() error
	// Stop gracefully stops the service.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle manages the startup and shutdown of multiple services.
// Services are started in order and stopped in reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger: logger,
	}
}

// Add registers a named service for lifecycle management.
// Services are started in the order they are added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts all services and blocks until a termination signal is
// received (SIGINT or SIGTERM). On signal, services are stopped in reverse
// order.
//
// Postcondition: All services are stopped when this method returns.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A service returning an error cancels the whole group.
	errCh := make(chan error, len(l.services))
	for _, ns := range l.services {
		ns := ns
		go func() {
			l.logger.Info("service starting", zap.String("name", ns.name))
			began := time.Now()
			if err := ns.service.Start(); err != nil {
				l.logger.Error("service exited",
					zap.String("name", ns.name),
					zap.Duration("ran_for", time.Since(began)),
					zap.Error(err),
				)
				errCh <- fmt.Errorf("service %s: %w", ns.name, err)
				cancel()
			}
		}()
	}

	l.logger.Info("services running", zap.Int("services", len(l.services)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		l.logger.Info("signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		l.logger.Error("stopping on service error", zap.Error(err))
	case <-ctx.Done():
		l.logger.Info("context done, stopping")
	}

	l.stopAll()

	l.logger.Info("exiting", zap.Duration("uptime", time.Since(start)))
	return nil
}

// stopAll stops the services in reverse registration order, so dependents
// go down before the things they depend on.
func (l *Lifecycle) stopAll() {
	began := time.Now()
	for i := len(l.services) - 1; i >= 0; i-- {
		ns := l.services[i]
		svcBegan := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("name", ns.name),
			zap.Duration("took", time.Since(svcBegan)),
		)
	}
	l.logger.Info("services stopped", zap.Duration("took", time.Since(began)))
}
