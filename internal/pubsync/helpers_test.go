package pubsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/identity"
	"github.com/roach88/slimecats/internal/store"
	"github.com/roach88/slimecats/internal/testutil"
)

func newTestStore(t *testing.T, clock *testutil.ManualClock) *store.Store {
	t.Helper()
	s, err := store.Open("", testutil.Workspace, store.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// seed merges a document written at ts into s.
func seed(t *testing.T, s *store.Store, signer identity.Signer, path, content string, ts int64) doc.Document {
	t.Helper()
	d, err := doc.New(signer, testutil.Workspace, path, content, ts)
	require.NoError(t, err)
	applied, err := s.Merge(context.Background(), d)
	require.NoError(t, err)
	require.True(t, applied)
	return d
}

func allDocs(t *testing.T, s *store.Store) []doc.Document {
	t.Helper()
	docs, err := s.Documents(context.Background(), "")
	require.NoError(t, err)
	return docs
}

// stubPub serves a fixed listing and records submissions.
type stubPub struct {
	url       string
	docs      []doc.Document
	submitted []doc.Document
	listErr   error
}

func (p *stubPub) URL() string { return p.url }

func (p *stubPub) ListDocuments(context.Context, string, string) ([]doc.Document, error) {
	return p.docs, p.listErr
}

func (p *stubPub) SubmitDocuments(_ context.Context, _ string, docs []doc.Document) (int, error) {
	p.submitted = append(p.submitted, docs...)
	return len(docs), nil
}

func (p *stubPub) Close() error { return nil }

// blockingPub stalls in ListDocuments until released or the context ends.
type blockingPub struct {
	url     string
	entered chan struct{}
	release chan struct{}
}

func newBlockingPub(url string) *blockingPub {
	return &blockingPub{url: url, entered: make(chan struct{}, 16), release: make(chan struct{})}
}

func (p *blockingPub) URL() string { return p.url }

func (p *blockingPub) ListDocuments(ctx context.Context, _, _ string) ([]doc.Document, error) {
	p.entered <- struct{}{}
	select {
	case <-p.release:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *blockingPub) SubmitDocuments(context.Context, string, []doc.Document) (int, error) {
	return 0, nil
}

func (p *blockingPub) Close() error { return nil }
