package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/testutil"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, testutil.Workspace)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Memory(t *testing.T) {
	for _, path := range []string{"", ":memory:"} {
		s, err := Open(path, testutil.Workspace)
		require.NoError(t, err)
		_, ok := s.backend.(*MemoryBackend)
		assert.True(t, ok, "path %q should give a memory backend", path)
		require.NoError(t, s.Close())
	}
}

func TestOpen_InvalidWorkspace(t *testing.T) {
	_, err := Open("", "no-plus.x")
	assert.ErrorIs(t, err, doc.ErrInvalidWorkspace)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path, testutil.Workspace)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpenSQLite_Pragmas(t *testing.T) {
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer b.Close()

	assert.NoError(t, b.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, b.verifyPragma("synchronous", "1"))
	assert.NoError(t, b.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, b.verifyPragma("user_version", "1"))
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	signer := testutil.NewSigner(t, "suzy")

	s1, err := Open(path, testutil.Workspace)
	require.NoError(t, err)
	_, err = s1.Put(ctx, signer, "/todo/1-1234567/text.txt", "take a nap")
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path, testutil.Workspace)
	require.NoError(t, err)
	defer s2.Close()

	content, ok, err := s2.Content(ctx, "/todo/1-1234567/text.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "take a nap", content)
}

func TestOpen_WorkspacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	signer := testutil.NewSigner(t, "suzy")

	a, err := New(testutil.Workspace, backend)
	require.NoError(t, err)
	b, err := New("+other.workspace", backend)
	require.NoError(t, err)

	_, err = a.Put(ctx, signer, "/x", "a")
	require.NoError(t, err)

	paths, err := b.Query(ctx, "/")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestClose_LaterOperationsFail(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store, _ *testutil.ManualClock) {
		ctx := context.Background()
		signer := testutil.NewSigner(t, "suzy")
		d := signedDoc(t, signer, "/x", "y", testutil.BaseTime)

		require.NoError(t, s.Close())
		require.NoError(t, s.Close(), "second Close is a no-op")

		_, err := s.Put(ctx, signer, "/x", "y")
		assert.ErrorIs(t, err, ErrStoreClosed)
		_, err = s.Get(ctx, "/x")
		assert.ErrorIs(t, err, ErrStoreClosed)
		_, err = s.Query(ctx, "/")
		assert.ErrorIs(t, err, ErrStoreClosed)
		_, err = s.Documents(ctx, "/")
		assert.ErrorIs(t, err, ErrStoreClosed)
		_, err = s.Merge(ctx, d)
		assert.ErrorIs(t, err, ErrStoreClosed)
	})
}
