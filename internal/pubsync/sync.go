package pubsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/store"
)

// DefaultTimeout bounds one cycle against one pub.
const DefaultTimeout = 30 * time.Second

// Phase is the state of a sync cycle against one pub.
type Phase int

const (
	Idle Phase = iota
	Connecting
	Exchanging
	Reconciling
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Exchanging:
		return "exchanging"
	case Reconciling:
		return "reconciling"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Stats counts what one cycle moved.
type Stats struct {
	Pulled   int           `json:"pulled"`   // remote documents applied locally
	Ignored  int           `json:"ignored"`  // remote documents already current locally
	Rejected int           `json:"rejected"` // remote documents failing verification
	Pushed   int           `json:"pushed"`   // local documents the pub applied
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of one cycle against one pub.
type Result struct {
	Peer  string
	Stats Stats
	Err   error

	// Phase is Done on success. On failure it is Failed and Reached holds
	// the phase the cycle was in when it failed.
	Phase   Phase
	Reached Phase
}

// OK reports whether the cycle succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Syncer reconciles one store against pubs.
type Syncer struct {
	store   *store.Store
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	running map[string]bool
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithTimeout bounds each cycle against a single pub. Zero or negative
// disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Syncer) { s.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSyncer creates a Syncer for s.
func NewSyncer(s *store.Store, opts ...Option) *Syncer {
	sy := &Syncer{
		store:   s,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		running: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(sy)
	}
	return sy
}

// SyncOnce runs one cycle against p.
//
// Returns ErrSyncInProgress without touching p when a cycle against the same
// pub is already running.
func (s *Syncer) SyncOnce(ctx context.Context, p Pub) (Stats, error) {
	r := s.run(ctx, p, newCycleID())
	return r.Stats, r.Err
}

// SyncAll runs one cycle against every pub concurrently and returns a result
// per pub, in the order given. A failure against one pub never affects the
// others.
func (s *Syncer) SyncAll(ctx context.Context, pubs []Pub) []Result {
	cycle := newCycleID()
	results := make([]Result, len(pubs))

	var wg sync.WaitGroup
	for i, p := range pubs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.run(ctx, p, cycle)
		}()
	}
	wg.Wait()
	return results
}

func (s *Syncer) run(ctx context.Context, p Pub, cycle string) Result {
	peer := p.URL()
	log := s.logger.With("peer", peer, "cycle", cycle)
	res := Result{Peer: peer, Phase: Connecting}

	if !s.begin(peer) {
		res.Phase, res.Reached = Failed, Connecting
		res.Err = fmt.Errorf("%s: %w", peer, ErrSyncInProgress)
		log.Warn("sync skipped", "error", res.Err)
		return res
	}
	defer s.end(peer)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.exchange(ctx, p, &res)
	res.Stats.Duration = time.Since(start)

	if err != nil {
		res.Reached = res.Phase
		res.Phase = Failed
		res.Err = fmt.Errorf("%s: %s: %w", peer, res.Reached, classify(ctx, err))
		log.Warn("sync failed", "phase", res.Reached, "error", res.Err)
		return res
	}
	res.Phase = Done
	log.Debug("sync done",
		"pulled", res.Stats.Pulled,
		"ignored", res.Stats.Ignored,
		"rejected", res.Stats.Rejected,
		"pushed", res.Stats.Pushed,
		"duration", res.Stats.Duration)
	return res
}

// exchange advances res.Phase as it goes so a failure can report where it
// stopped.
func (s *Syncer) exchange(ctx context.Context, p Pub, res *Result) error {
	ws := s.store.Workspace()

	res.Phase = Exchanging
	remote, err := p.ListDocuments(ctx, ws, "")
	if err != nil {
		return err
	}
	local, err := s.store.Documents(ctx, "")
	if err != nil {
		return err
	}

	res.Phase = Reconciling
	remoteByPath := make(map[string]doc.Document, len(remote))
	for _, d := range remote {
		applied, err := s.store.Merge(ctx, d)
		switch {
		case errors.Is(err, store.ErrInvalidSignature):
			// The pub's copy does not count; ours is pushed if we have one.
			res.Stats.Rejected++
			s.logger.Debug("rejected remote document", "peer", res.Peer, "path", d.Path, "error", err)
			continue
		case err != nil:
			return err
		case applied:
			res.Stats.Pulled++
		default:
			res.Stats.Ignored++
		}
		if cur, ok := remoteByPath[d.Path]; ok {
			d = doc.Newer(cur, d)
		}
		remoteByPath[d.Path] = d
	}

	var push []doc.Document
	for _, d := range local {
		r, ok := remoteByPath[d.Path]
		if !ok || doc.Compare(d, r) > 0 {
			push = append(push, d)
		}
	}
	if len(push) == 0 {
		return nil
	}
	n, err := p.SubmitDocuments(ctx, ws, push)
	if err != nil {
		return err
	}
	res.Stats.Pushed = n
	return nil
}

func (s *Syncer) begin(peer string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[peer] {
		return false
	}
	s.running[peer] = true
	return true
}

func (s *Syncer) end(peer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, peer)
}

// newCycleID returns a time-ordered id so cycle logs sort by start time.
// NewV7 only fails when crypto/rand does.
func newCycleID() string {
	return uuid.Must(uuid.NewV7()).String()
}
