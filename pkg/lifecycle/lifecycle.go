package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Coordinator owns the process context and the teardown of long-lived
// resources. Its context is cancelled on SIGINT or SIGTERM, which aborts
// any pipeline run in flight; Close then releases registered resources in
// reverse registration order.
type Coordinator struct {
	ctx    context.Context
	stop   context.CancelFunc
	logger *slog.Logger

	mu      sync.Mutex
	closers []closer
	serving sync.WaitGroup
}

type closer struct {
	name string
	fn   func() error
}

// New creates a Coordinator whose context is cancelled on interrupt signals.
func New(logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return &Coordinator{
		ctx:    ctx,
		stop:   stop,
		logger: logger,
	}
}

// Context returns the coordinator's context, cancelled on interrupt or Close.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Defer registers a named resource to release during Close. Resources are
// released in reverse registration order.
func (c *Coordinator) Defer(name string, fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, closer{name: name, fn: fn})
}

// Serve starts srv in the background and registers its shutdown with Close.
// A listen failure is logged rather than fatal: an unreachable metrics port
// should not abort a pipeline run.
func (c *Coordinator) Serve(name string, srv *http.Server) {
	c.serving.Go(func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("server failed", "name", name, "error", err)
		}
	})

	c.Defer(name, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

// Close cancels the context and releases every registered resource, newest
// first. It returns the first close error encountered, after attempting all
// of them, or a timeout error if teardown stalls.
func (c *Coordinator) Close(timeout time.Duration) error {
	c.stop()

	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		var first error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].fn(); err != nil {
				c.logger.Error("close failed", "name", closers[i].name, "error", err)
				if first == nil {
					first = fmt.Errorf("close %s: %w", closers[i].name, err)
				}
			}
		}
		c.serving.Wait()
		done <- first
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
