package todo

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/slimecats/internal/identity"
	"github.com/roach88/slimecats/internal/store"
	"github.com/roach88/slimecats/internal/testutil"
)

func newTestCodec(t *testing.T) (*Codec, *store.Store, *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock(0)
	s, err := store.Open("", testutil.Workspace, store.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	salt := 1_000_000
	c := NewCodec(s, testutil.NewSigner(t, "suzy"), WithIDSource(
		func() int64 { return clock.Advance(1) },
		func() int { salt++; return salt },
	))
	return c, s, clock
}

func TestMakeNew_IDFormat(t *testing.T) {
	kp, err := identity.Generate("suzy", identity.SchemeEd25519)
	require.NoError(t, err)
	signer, err := identity.ParseKeypair(kp)
	require.NoError(t, err)
	s, err := store.Open("", testutil.Workspace)
	require.NoError(t, err)
	defer s.Close()

	c := NewCodec(s, signer)
	todo := c.MakeNew("take a nap")

	assert.Regexp(t, regexp.MustCompile(`^\d{16}-\d{7}$`), todo.ID)
	assert.Equal(t, "take a nap", todo.Text)
	assert.False(t, todo.IsDone)
}

func TestMakeNew_UniqueIDs(t *testing.T) {
	c, _, _ := newTestCodec(t)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := c.MakeNew("x").ID
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSaveLookup_RoundTrip(t *testing.T) {
	c, s, _ := newTestCodec(t)
	ctx := context.Background()

	todo := c.MakeNew("feed the cat")
	todo.IsDone = true
	require.NoError(t, c.Save(ctx, todo))

	got, err := c.Lookup(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, todo, got)

	isDone, ok, err := s.Content(ctx, IsDonePath(todo.ID))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", isDone)
}

func TestLookup_AbsenceRule(t *testing.T) {
	c, s, _ := newTestCodec(t)
	ctx := context.Background()
	signer := testutil.NewSigner(t, "fred")

	t.Run("only isDone means absent", func(t *testing.T) {
		_, err := s.Put(ctx, signer, IsDonePath("1-1000000"), "true")
		require.NoError(t, err)

		_, err = c.Lookup(ctx, "1-1000000")
		assert.ErrorIs(t, err, ErrAbsent)
	})

	t.Run("only text means not done", func(t *testing.T) {
		_, err := s.Put(ctx, signer, TextPath("2-1000000"), "go outside")
		require.NoError(t, err)

		got, err := c.Lookup(ctx, "2-1000000")
		require.NoError(t, err)
		assert.Equal(t, Todo{ID: "2-1000000", Text: "go outside", IsDone: false}, got)
	})

	t.Run("nothing means absent", func(t *testing.T) {
		_, err := c.Lookup(ctx, "3-1000000")
		assert.ErrorIs(t, err, ErrAbsent)
	})

	t.Run("garbage isDone means not done", func(t *testing.T) {
		_, err := s.Put(ctx, signer, TextPath("4-1000000"), "nap")
		require.NoError(t, err)
		_, err = s.Put(ctx, signer, IsDonePath("4-1000000"), "yes please")
		require.NoError(t, err)

		got, err := c.Lookup(ctx, "4-1000000")
		require.NoError(t, err)
		assert.False(t, got.IsDone)
	})
}

func TestLookup_PartialReplication(t *testing.T) {
	// A replica that received the isDone update but not the text update
	// shows the new isDone with the old text, and no error.
	c, s, clock := newTestCodec(t)
	ctx := context.Background()

	todo := c.MakeNew("old text")
	require.NoError(t, c.Save(ctx, todo))

	remote, err := store.Open("", testutil.Workspace, store.WithClock(clock.Now))
	require.NoError(t, err)
	defer remote.Close()
	rc := NewCodec(remote, testutil.NewSigner(t, "fred"))

	docs, err := s.Documents(ctx, "")
	require.NoError(t, err)
	for _, d := range docs {
		_, err := remote.Merge(ctx, d)
		require.NoError(t, err)
	}

	clock.Advance(10)
	require.NoError(t, rc.Save(ctx, Todo{ID: todo.ID, Text: "new text", IsDone: true}))

	isDoneDoc, err := remote.Get(ctx, IsDonePath(todo.ID))
	require.NoError(t, err)
	applied, err := s.Merge(ctx, isDoneDoc)
	require.NoError(t, err)
	require.True(t, applied)

	got, err := c.Lookup(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, Todo{ID: todo.ID, Text: "old text", IsDone: true}, got)
}

func TestListIDs_OrderAndScopes(t *testing.T) {
	c, s, _ := newTestCodec(t)
	ctx := context.Background()

	nap := c.MakeNew("take a nap")
	outside := c.MakeNew("go outside")
	feed := c.MakeNew("feed the cat")
	feed.IsDone = true

	// Saved out of creation order.
	require.NoError(t, c.Save(ctx, feed))
	require.NoError(t, c.Save(ctx, nap))
	require.NoError(t, c.Save(ctx, outside))

	// An orphan isDone document and an unrelated document are ignored.
	_, err := s.Put(ctx, testutil.NewSigner(t, "fred"), IsDonePath("0-1000000"), "true")
	require.NoError(t, err)
	_, err = s.Put(ctx, testutil.NewSigner(t, "fred"), "/slimecatsdo/boxes.json", "{}")
	require.NoError(t, err)

	all, err := c.ListIDs(ctx, All)
	require.NoError(t, err)
	assert.Equal(t, []string{nap.ID, outside.ID, feed.ID}, all, "creation order")

	done, err := c.ListIDs(ctx, Done)
	require.NoError(t, err)
	assert.Equal(t, []string{feed.ID}, done)

	undone, err := c.ListIDs(ctx, Undone)
	require.NoError(t, err)
	assert.Equal(t, []string{nap.ID, outside.ID}, undone)

	todos, err := c.List(ctx, All)
	require.NoError(t, err)
	assert.Equal(t, []Todo{nap, outside, feed}, todos)
}

func TestListIDs_Empty(t *testing.T) {
	c, _, _ := newTestCodec(t)
	ids, err := c.ListIDs(context.Background(), All)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestNthAndMarkDone(t *testing.T) {
	c, _, _ := newTestCodec(t)
	ctx := context.Background()

	first := c.MakeNew("one")
	second := c.MakeNew("two")
	require.NoError(t, c.Save(ctx, first))
	require.NoError(t, c.Save(ctx, second))

	got, err := c.Nth(ctx, All, 2)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	_, err = c.Nth(ctx, All, 3)
	assert.ErrorIs(t, err, ErrAbsent)
	_, err = c.Nth(ctx, All, 0)
	assert.ErrorIs(t, err, ErrAbsent)

	marked, err := c.MarkDone(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, marked.IsDone)

	undone, err := c.ListIDs(ctx, Undone)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, undone)

	_, err = c.MarkDone(ctx, "9-9999999")
	assert.ErrorIs(t, err, ErrAbsent)
}

func TestSave_InvalidID(t *testing.T) {
	c, _, _ := newTestCodec(t)
	err := c.Save(context.Background(), Todo{ID: "a/b", Text: "x"})
	assert.ErrorIs(t, err, store.ErrInvalidWrite)
}

func TestSave_ReportsStoreErrors(t *testing.T) {
	c, s, _ := newTestCodec(t)
	require.NoError(t, s.Close())

	err := c.Save(context.Background(), c.MakeNew("x"))
	assert.ErrorIs(t, err, store.ErrStoreClosed)
}
