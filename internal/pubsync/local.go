package pubsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/store"
)

// LocalPub serves an in-process store as a pub.
type LocalPub struct {
	name  string
	store *store.Store
}

// NewLocalPub exposes s under the URL "local:name". Closing the LocalPub
// does not close s.
func NewLocalPub(name string, s *store.Store) *LocalPub {
	return &LocalPub{name: name, store: s}
}

func (p *LocalPub) URL() string { return "local:" + p.name }

func (p *LocalPub) ListDocuments(ctx context.Context, workspace, prefix string) ([]doc.Document, error) {
	if workspace != p.store.Workspace() {
		return nil, nil
	}
	return p.store.Documents(ctx, prefix)
}

func (p *LocalPub) SubmitDocuments(ctx context.Context, workspace string, docs []doc.Document) (int, error) {
	if workspace != p.store.Workspace() {
		return 0, fmt.Errorf("%w: local pub %s does not hold %s", ErrMalformedResponse, p.name, workspace)
	}
	n := 0
	for _, d := range docs {
		applied, err := p.store.Merge(ctx, d)
		if errors.Is(err, store.ErrInvalidSignature) {
			continue
		}
		if err != nil {
			return n, err
		}
		if applied {
			n++
		}
	}
	return n, nil
}

func (p *LocalPub) Close() error { return nil }
