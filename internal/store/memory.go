package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/roach88/slimecats/internal/doc"
)

// MemoryBackend keeps documents in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string]map[string]doc.Document // workspace -> path -> doc
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string]map[string]doc.Document)}
}

func (m *MemoryBackend) Get(_ context.Context, workspace, path string) (doc.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[workspace][path]
	return d, ok, nil
}

func (m *MemoryBackend) Upsert(_ context.Context, d doc.Document) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws, ok := m.docs[d.Workspace]
	if !ok {
		ws = make(map[string]doc.Document)
		m.docs[d.Workspace] = ws
	}
	if cur, exists := ws[d.Path]; exists && doc.Compare(d, cur) <= 0 {
		return false, nil
	}
	ws[d.Path] = d
	return true, nil
}

func (m *MemoryBackend) Paths(_ context.Context, workspace, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := []string{}
	for p := range m.docs[workspace] {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (m *MemoryBackend) Documents(_ context.Context, workspace, prefix string) ([]doc.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := []doc.Document{}
	for p, d := range m.docs[workspace] {
		if strings.HasPrefix(p, prefix) {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// Close drops all documents.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]map[string]doc.Document)
	return nil
}
