package store

import (
	"context"

	"github.com/roach88/slimecats/internal/doc"
)

// Backend persists current documents. Implementations must make Upsert an
// atomic last-write-wins compare-and-replace per (workspace, path).
type Backend interface {
	// Get returns the current document, or ok=false if there is none.
	Get(ctx context.Context, workspace, path string) (d doc.Document, ok bool, err error)

	// Upsert stores d if no document exists at its path or d wins under
	// doc.Compare. It reports whether d was stored.
	Upsert(ctx context.Context, d doc.Document) (applied bool, err error)

	// Paths returns the paths starting with prefix, sorted byte-wise.
	Paths(ctx context.Context, workspace, prefix string) ([]string, error)

	// Documents returns the documents whose path starts with prefix, sorted
	// by path.
	Documents(ctx context.Context, workspace, prefix string) ([]doc.Document, error)

	Close() error
}
