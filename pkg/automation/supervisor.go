// Package automation wires the mentions, discovery, content, and thread
// loops together with the gateway, posting queue, and scheduler into a
// supervised set of background tasks.
package automation

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is a supervised background loop.
type Task interface {
	// Run blocks until ctx is cancelled or the loop decides to stop on its
	// own, returning the reason.
	Run(ctx context.Context) error
	Name() string
}

// shutdownTimeout bounds how long Shutdown waits for spawned tasks to
// return after cancellation before giving up.
const shutdownTimeout = 30 * time.Second

// Supervisor owns a cancellation context shared by every spawned task and
// collects their completion so shutdown can wait on all of them. It holds
// no business dependencies of its own -- those are passed to whatever
// loops are spawned.
type Supervisor struct {
	logger *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	wg    sync.WaitGroup
	count int
}

// NewSupervisor creates a Supervisor with a fresh cancellation context.
func NewSupervisor(logger *logrus.Logger) *Supervisor {
	if logger == nil {
		logger = logrus.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{logger: logger, ctx: ctx, cancel: cancel}
}

// Context returns the supervisor's cancellation context, passed to spawned
// tasks so they can observe shutdown via ctx.Done().
func (s *Supervisor) Context() context.Context {
	return s.ctx
}

// Spawn starts t on its own goroutine, tracking it for Shutdown.
func (s *Supervisor) Spawn(t Task) {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()

	s.logger.WithField("task", t.Name()).Info("spawning automation task")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.WithField("task", t.Name()).WithField("panic", r).Error("automation task panicked")
			}
		}()
		if err := t.Run(s.ctx); err != nil && err != context.Canceled {
			s.logger.WithError(err).WithField("task", t.Name()).Error("automation task exited with error")
		}
	}()
}

// TaskCount returns the number of tasks spawned so far (not decremented as
// they complete -- mirrors a monotonically-assigned task roster).
func (s *Supervisor) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Shutdown cancels every spawned task and waits up to shutdownTimeout for
// them to return, logging (not failing) if the deadline is exceeded.
func (s *Supervisor) Shutdown() {
	s.logger.Info("initiating graceful shutdown")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("graceful shutdown complete")
	case <-time.After(shutdownTimeout):
		s.logger.Warn("shutdown timeout exceeded (30s), some tasks may still be running")
	}
}

// RunUntilShutdown blocks until an OS interrupt or termination signal
// arrives, then shuts every spawned task down.
func (s *Supervisor) RunUntilShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	s.logger.WithField("signal", sig.String()).Info("received shutdown signal")
	s.Shutdown()
}

// ConsecutiveErrorTracker counts consecutive failures reported to it and
// reports whether a loop has exceeded its allowed run of failures, so a
// loop body can back off or skip a tick rather than hammering a failing
// dependency.
type ConsecutiveErrorTracker struct {
	max   int
	count int
}

// NewConsecutiveErrorTracker creates a tracker that trips after max
// consecutive failures.
func NewConsecutiveErrorTracker(max int) *ConsecutiveErrorTracker {
	if max <= 0 {
		max = 1
	}
	return &ConsecutiveErrorTracker{max: max}
}

// RecordError increments the failure streak and reports whether the
// tracker has now tripped (reached max).
func (t *ConsecutiveErrorTracker) RecordError() (tripped bool) {
	t.count++
	return t.count >= t.max
}

// RecordSuccess resets the failure streak.
func (t *ConsecutiveErrorTracker) RecordSuccess() {
	t.count = 0
}

// Count returns the current consecutive-failure count.
func (t *ConsecutiveErrorTracker) Count() int {
	return t.count
}
