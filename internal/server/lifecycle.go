// Package server runs the binaries' long-lived services: they start together and
// stop in reverse order on a signal, a failure, or when a foreground service such
// as the console finishes.
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

// DefaultStopTimeout bounds how long one service may take to stop.
const DefaultStopTimeout = 10 * time.Second

// Service is a long-running component.
type Service interface {
	// Start blocks until the service stops, finishes on its own, or fails.
	// Returning before Stop ends the whole lifecycle.
	Start() error
	// Stop asks the service to finish.
	Stop()
}

// FuncService builds a Service from a pair of functions.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls StartFn.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls StopFn.
func (f *FuncService) Stop() { f.StopFn() }

// Background is a Service for components that start goroutines and return, such
// as the game clock: Start runs SetupFn then parks until Stop runs TeardownFn.
type Background struct {
	SetupFn    func() error
	TeardownFn func()

	once sync.Once
	done chan struct{}
}

// NewBackground creates a Background service.
//
// Precondition: setup and teardown must be non-nil.
func NewBackground(setup func() error, teardown func()) *Background {
	return &Background{SetupFn: setup, TeardownFn: teardown, done: make(chan struct{})}
}

// Start runs setup and blocks until Stop.
func (b *Background) Start() error {
	if err := b.SetupFn(); err != nil {
		return err
	}
	<-b.done
	return nil
}

// Stop runs teardown once and releases Start.
func (b *Background) Stop() {
	b.once.Do(func() {
		b.TeardownFn()
		close(b.done)
	})
}

// exit records why a service's Start returned.
type exit struct {
	name string
	err  error
}

type entry struct {
	name string
	svc  Service
}

// Lifecycle starts services in the order they were added and stops them in
// reverse.
type Lifecycle struct {
	// StopTimeout bounds each service's Stop; a service that overruns is
	// abandoned so the ones added before it still get to stop.
	StopTimeout time.Duration

	logger  *zap.Logger
	mu      sync.Mutex
	entries []entry
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	if logger == nil {
		panic("server.NewLifecycle: logger must not be nil")
	}
	return &Lifecycle{StopTimeout: DefaultStopTimeout, logger: logger}
}

// Add registers svc under name.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{name: name, svc: svc})
}

// Run starts every service and blocks until SIGINT or SIGTERM, ctx is done, or
// a service returns.
//
// Postcondition: every service has been asked to stop; the error of a failed
// service is returned wrapped with its name.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.mu.Lock()
	entries := append([]entry(nil), l.entries...)
	l.mu.Unlock()

	exits := make(chan exit, len(entries))
	for _, e := range entries {
		go func() {
			l.logger.Info("starting service", zap.String("service", e.name))
			exits <- exit{name: e.name, err: e.svc.Start()}
		}()
	}
	l.logger.Info("services started",
		zap.Int("count", len(entries)),
		zap.Duration("startup", time.Since(start)),
	)

	var err error
	select {
	case <-ctx.Done():
		l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	case x := <-exits:
		if x.err != nil {
			err = fmt.Errorf("service %s: %w", x.name, x.err)
			l.logger.Error("service failed, shutting down", zap.String("service", x.name), zap.Error(x.err))
		} else {
			l.logger.Info("service finished, shutting down", zap.String("service", x.name))
		}
	}

	for i := len(entries) - 1; i >= 0; i-- {
		l.stopOne(entries[i])
	}
	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))
	return err
}

func (l *Lifecycle) stopOne(e entry) {
	begin := time.Now()
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.svc.Stop()
	}()

	timeout := l.StopTimeout
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}
	select {
	case <-done:
		l.logger.Info("service stopped",
			zap.String("service", e.name),
			zap.Duration("elapsed", time.Since(begin)),
		)
	case <-time.After(timeout):
		l.logger.Warn("service did not stop in time; abandoning it",
			zap.String("service", e.name),
			zap.Duration("timeout", timeout),
		)
	}
}
