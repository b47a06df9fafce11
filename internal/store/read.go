package store

import (
	"context"
	"fmt"

	"github.com/roach88/slimecats/internal/doc"
)

// Get returns the current document at path, or ErrNotFound.
func (s *Store) Get(ctx context.Context, path string) (doc.Document, error) {
	release, err := s.acquire("get")
	if err != nil {
		return doc.Document{}, err
	}
	defer release()

	d, ok, err := s.backend.Get(ctx, s.workspace, path)
	if err != nil {
		return doc.Document{}, fmt.Errorf("get %s: %w", path, err)
	}
	if !ok {
		return doc.Document{}, fmt.Errorf("get %s: %w", path, ErrNotFound)
	}
	return d, nil
}

// Content returns the content at path. ok is false when no document exists.
func (s *Store) Content(ctx context.Context, path string) (content string, ok bool, err error) {
	d, err := s.Get(ctx, path)
	if IsNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return d.Content, true, nil
}

// Query returns every current path starting with prefix, sorted byte-wise.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Query(ctx context.Context, prefix string) ([]string, error) {
	release, err := s.acquire("query")
	if err != nil {
		return nil, err
	}
	defer release()

	paths, err := s.backend.Paths(ctx, s.workspace, prefix)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", prefix, err)
	}
	return paths, nil
}

// Documents returns every current document whose path starts with prefix,
// sorted by path.
func (s *Store) Documents(ctx context.Context, prefix string) ([]doc.Document, error) {
	release, err := s.acquire("documents")
	if err != nil {
		return nil, err
	}
	defer release()

	docs, err := s.backend.Documents(ctx, s.workspace, prefix)
	if err != nil {
		return nil, fmt.Errorf("documents %q: %w", prefix, err)
	}
	return docs, nil
}
