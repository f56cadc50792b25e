package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// sweepTimeout bounds a single sweep
const sweepTimeout = 30 * time.Second

// Sweeper removes expired sessions and reports how many it dropped
type Sweeper interface {
	SweepSessions(ctx context.Context) (int, error)
}

// SessionSweeper periodically drops expired login sessions so the
// in-memory store does not grow with abandoned logins
type SessionSweeper struct {
	sweeper  Sweeper
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewSessionSweeper creates a new session sweeper job
func NewSessionSweeper(sweeper Sweeper, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SessionSweeper{
		sweeper:  sweeper,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the sweep loop
func (s *SessionSweeper) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()
	slog.Info("session sweeper started", slog.Duration("interval", s.interval))
}

// Stop stops the loop and waits for an in-flight sweep to finish
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	slog.Info("session sweeper stopped")
}

func (s *SessionSweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *SessionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		slog.Error("session sweep failed", slog.String("error", err.Error()))
	}
}

// RunOnce sweeps immediately
func (s *SessionSweeper) RunOnce(ctx context.Context) (int, error) {
	removed, err := s.sweeper.SweepSessions(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		slog.Info("expired sessions removed", slog.Int("count", removed))
	}
	return removed, nil
}

// IsRunning returns whether the sweeper is running
func (s *SessionSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
