package pub

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/store"
)

// ErrRegistryClosed is returned after Close.
var ErrRegistryClosed = errors.New("pub: registry closed")

// Registry opens one store per workspace on first use.
type Registry struct {
	dataDir string
	opts    []store.Option

	mu     sync.Mutex
	stores map[string]*store.Store
	closed bool
}

// NewRegistry keeps workspaces as SQLite files under dataDir, or in memory
// when dataDir is empty.
func NewRegistry(dataDir string, opts ...store.Option) *Registry {
	return &Registry{dataDir: dataDir, opts: opts, stores: make(map[string]*store.Store)}
}

// Store returns the store for workspace, opening it if needed.
func (r *Registry) Store(workspace string) (*store.Store, error) {
	if err := doc.ValidateWorkspace(workspace); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	if s, ok := r.stores[workspace]; ok {
		return s, nil
	}

	path := ""
	if r.dataDir != "" {
		if err := os.MkdirAll(r.dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		path = filepath.Join(r.dataDir, workspace+".db")
	}
	s, err := store.Open(path, workspace, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("open workspace %s: %w", workspace, err)
	}
	r.stores[workspace] = s
	return s, nil
}

// Workspaces lists the open workspaces in sorted order.
func (r *Registry) Workspaces() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.stores))
	for ws := range r.stores {
		out = append(out, ws)
	}
	sort.Strings(out)
	return out
}

// Close closes every store. Errors are joined.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for ws, s := range r.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", ws, err))
		}
	}
	r.stores = nil
	return errors.Join(errs...)
}
