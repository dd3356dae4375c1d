package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/loganlanou/profiledesk/internal/session"
)

// SweepInterval is how often idle sessions are removed
const SweepInterval = 10 * time.Minute

// SessionSweeper deletes session records that have not been used for
// longer than maxIdle. Reads keep a record alive through Store.Touch.
// Stores with native expiry do not need it.
type SessionSweeper struct {
	store    session.Sweeper
	maxIdle  time.Duration
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewSessionSweeper(store session.Sweeper, maxIdle time.Duration) *SessionSweeper {
	return &SessionSweeper{
		store:    store,
		maxIdle:  maxIdle,
		interval: SweepInterval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins the sweeping background job
func (s *SessionSweeper) Start(ctx context.Context) {
	slog.Info("starting session sweeper", "interval", s.interval, "max_idle", s.maxIdle)

	// Run immediately on start
	s.sweep(ctx)

	// Then run on interval
	s.ticker = time.NewTicker(s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.ticker.C:
				s.sweep(ctx)
			case <-ctx.Done():
				return
			case <-s.done:
				slog.Info("session sweeper stopped")
				return
			}
		}
	}()
}

// Stop stops the background job and waits for it to exit
func (s *SessionSweeper) Stop() {
	s.stopOnce.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.done)
	})
	s.wg.Wait()
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.maxIdle)
	n, err := s.store.DeleteIdleSince(ctx, cutoff)
	if err != nil {
		slog.Error("failed to sweep idle sessions", "error", err)
		return
	}
	if n > 0 {
		slog.Info("swept idle sessions", "count", n, "cutoff", cutoff)
	}
}
