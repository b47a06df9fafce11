package pubsync

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultInterval is how often a Scheduler syncs when none is given.
const DefaultInterval = 5 * time.Minute

// ErrSchedulerRunning is returned by Start on a scheduler that was already
// started. A stopped scheduler is not restarted.
var ErrSchedulerRunning = errors.New("pubsync: scheduler already running")

// Scheduler runs SyncAll immediately and then on every tick until stopped.
//
// Each cycle runs in its own goroutine, so a slow pub never delays the next
// tick for the others. A pub still syncing when the next tick fires gets an
// ErrSyncInProgress result for that tick.
type Scheduler struct {
	syncer   *Syncer
	pubs     []Pub
	interval time.Duration
	onResult func([]Result)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithResultHandler is called with the results of every cycle.
func WithResultHandler(fn func([]Result)) SchedulerOption {
	return func(s *Scheduler) { s.onResult = fn }
}

// NewScheduler creates a stopped scheduler. A non-positive interval means
// DefaultInterval.
func NewScheduler(syncer *Syncer, pubs []Pub, interval time.Duration, opts ...SchedulerOption) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{syncer: syncer, pubs: pubs, interval: interval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins syncing in the background. Cancelling ctx has the same
// effect as Stop without the wait.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrSchedulerRunning
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop cancels future cycles and waits for in-flight ones to return. It is
// safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.cycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		results := s.syncer.SyncAll(ctx, s.pubs)
		if s.onResult != nil {
			s.onResult(results)
		}
	}()
}
