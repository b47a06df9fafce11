package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/identity"
	"github.com/roach88/slimecats/internal/testutil"
)

// backendFactories lets every behavioural test run against both backends.
var backendFactories = []struct {
	name string
	open func(t *testing.T) Backend
}{
	{"memory", func(t *testing.T) Backend { return NewMemoryBackend() }},
	{"sqlite", func(t *testing.T) Backend {
		b, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		return b
	}},
}

// createTestStore creates a store over backend with a manual clock.
func createTestStore(t *testing.T, backend Backend) (*Store, *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock(0)
	s, err := New(testutil.Workspace, backend, WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clock
}

// forEachBackend runs fn once per backend as a subtest.
func forEachBackend(t *testing.T, fn func(t *testing.T, s *Store, clock *testutil.ManualClock)) {
	for _, bf := range backendFactories {
		t.Run(bf.name, func(t *testing.T) {
			s, clock := createTestStore(t, bf.open(t))
			fn(t, s, clock)
		})
	}
}

// signedDoc builds a signed document outside any store.
func signedDoc(t *testing.T, signer identity.Signer, path, content string, ts int64) doc.Document {
	t.Helper()
	d, err := doc.New(signer, testutil.Workspace, path, content, ts)
	require.NoError(t, err)
	return d
}
