package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/identity"
)

// Store is the document store for a single workspace.
//
// Thread-safety: all methods are safe for concurrent use. Close waits for
// in-flight operations to finish before releasing the backend.
type Store struct {
	workspace string
	backend   Backend
	verifier  identity.Verifier
	now       func() int64
	logger    *slog.Logger

	mu     sync.RWMutex // guards closed; held shared by every operation
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the microsecond clock used to stamp writes and to bound
// incoming timestamps.
func WithClock(now func() int64) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithVerifier overrides the signature verifier (default
// identity.DefaultVerifier).
func WithVerifier(v identity.Verifier) Option {
	return func(s *Store) {
		s.verifier = v
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store for workspace over an already opened backend.
// The store takes ownership of the backend and closes it on Close.
func New(workspace string, backend Backend, opts ...Option) (*Store, error) {
	if err := doc.ValidateWorkspace(workspace); err != nil {
		return nil, err
	}
	s := &Store{
		workspace: workspace,
		backend:   backend,
		verifier:  identity.DefaultVerifier,
		now:       doc.NowMicros,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open opens a store for workspace. An empty path or ":memory:" gives an
// in-memory store; anything else is a SQLite database file.
func Open(path, workspace string, opts ...Option) (*Store, error) {
	if err := doc.ValidateWorkspace(workspace); err != nil {
		return nil, err
	}
	if path == "" || path == ":memory:" {
		return New(workspace, NewMemoryBackend(), opts...)
	}
	backend, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	s, err := New(workspace, backend, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return s, nil
}

// Workspace returns the workspace this store is scoped to.
func (s *Store) Workspace() string {
	return s.workspace
}

// Close releases the backend. Later operations fail with ErrStoreClosed.
// Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// acquire holds the store open for the duration of one operation.
func (s *Store) acquire(op string) (func(), error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		s.logger.Error("operation on closed store", "op", op, "workspace", s.workspace)
		return nil, fmt.Errorf("%s: %w", op, ErrStoreClosed)
	}
	return s.mu.RUnlock, nil
}
