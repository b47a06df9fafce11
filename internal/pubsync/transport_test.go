package pubsync

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/roach88/slimecats/internal/pub"
	"github.com/roach88/slimecats/internal/store"
	"github.com/roach88/slimecats/internal/testutil"
)

func newRegistry(t *testing.T) *pub.Registry {
	t.Helper()
	r := pub.NewRegistry("")
	t.Cleanup(func() { r.Close() })
	return r
}

func TestHTTPPub_SyncAgainstPubServer(t *testing.T) {
	registry := newRegistry(t)
	srv := httptest.NewServer(pub.NewHandler(pub.NewService(registry, nil), nil))
	defer srv.Close()

	clock := testutil.NewManualClock(0)
	a := newTestStore(t, clock)
	ctx := context.Background()
	_, err := a.Put(ctx, testutil.NewSigner(t, "suzy"), "/todo/1-1000000/text.txt", "nap")
	require.NoError(t, err)

	p, err := Dial(srv.URL + "/")
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, srv.URL, p.URL())

	syncer := NewSyncer(a)
	stats, err := syncer.SyncOnce(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pushed)

	remote, err := registry.Store(testutil.Workspace)
	require.NoError(t, err)
	assert.Equal(t, allDocs(t, a), allDocs(t, remote))

	stats, err = syncer.SyncOnce(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, Stats{Ignored: 1, Duration: stats.Duration}, stats)

	// A second replica picks the document up from the pub.
	b := newTestStore(t, clock)
	stats, err = NewSyncer(b).SyncOnce(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pulled)
	assert.Equal(t, allDocs(t, a), allDocs(t, b))
}

func TestHTTPPub_UnsyncableWritesNeverStored(t *testing.T) {
	registry := newRegistry(t)
	srv := httptest.NewServer(pub.NewHandler(pub.NewService(registry, nil), nil))
	defer srv.Close()

	clock := testutil.NewManualClock(0)
	a := newTestStore(t, clock)
	ctx := context.Background()
	signer := testutil.NewSigner(t, "suzy")

	_, err := a.Put(ctx, signer, "/todo/1-1000000/text.txt", "na\xffp")
	require.ErrorIs(t, err, store.ErrInvalidWrite)

	clock.Set(testutil.BaseTime / 1000)
	_, err = a.Put(ctx, signer, "/todo/1-1000000/isDone.json", "false")
	require.ErrorIs(t, err, store.ErrInvalidWrite)
	clock.Set(testutil.BaseTime)

	_, err = a.Put(ctx, signer, "/todo/1-1000000/text.txt", "nap")
	require.NoError(t, err)

	p, err := Dial(srv.URL)
	require.NoError(t, err)
	defer p.Close()

	syncer := NewSyncer(a)
	stats, err := syncer.SyncOnce(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pushed)

	remote, err := registry.Store(testutil.Workspace)
	require.NoError(t, err)
	assert.Equal(t, allDocs(t, a), allDocs(t, remote))

	stats, err = syncer.SyncOnce(ctx, p)
	require.NoError(t, err)
	assert.Zero(t, stats.Pushed)
	assert.Zero(t, stats.Pulled)
	assert.Equal(t, 1, stats.Ignored)
}

func TestHTTPPub_MalformedResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}},
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		}},
		{"not found", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			p := NewHTTPPub(srv.URL, srv.Client())
			_, err := p.ListDocuments(context.Background(), testutil.Workspace, "")
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestGRPCPub_SyncAgainstPubServer(t *testing.T) {
	registry := newRegistry(t)
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	pub.RegisterGRPC(srv, pub.NewService(registry, nil))
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer cc.Close()
	p := NewGRPCPub("grpc://bufnet", cc)

	clock := testutil.NewManualClock(0)
	a, b := newTestStore(t, clock), newTestStore(t, clock)
	ctx := context.Background()
	_, err = a.Put(ctx, testutil.NewSigner(t, "suzy"), "/from/a", "hi")
	require.NoError(t, err)
	_, err = b.Put(ctx, testutil.NewSigner(t, "fred"), "/from/b", "hello")
	require.NoError(t, err)

	results := NewSyncer(a).SyncAll(ctx, []Pub{p})
	require.True(t, results[0].OK(), "%v", results[0].Err)
	assert.Equal(t, 1, results[0].Stats.Pushed)

	stats, err := NewSyncer(b).SyncOnce(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pulled)
	assert.Equal(t, 1, stats.Pushed)

	stats, err = NewSyncer(a).SyncOnce(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pulled)
	assert.Equal(t, allDocs(t, a), allDocs(t, b))
}

func TestGRPCPub_Unreachable(t *testing.T) {
	p, err := Dial("grpc://127.0.0.1:1")
	require.NoError(t, err)
	defer p.Close()

	_, err = p.ListDocuments(context.Background(), testutil.Workspace, "")
	assert.ErrorIs(t, err, ErrPeerUnreachable)
}

func TestDial(t *testing.T) {
	var d Dialer
	local := NewLocalPub("b", newTestStore(t, testutil.NewManualClock(0)))
	d.RegisterLocal("b", local)

	tests := []struct {
		url     string
		want    any
		wantErr bool
	}{
		{url: "http://pub.example.com", want: &HTTPPub{}},
		{url: "https://pub.example.com/", want: &HTTPPub{}},
		{url: "grpc://localhost:7070", want: &GRPCPub{}},
		{url: "local:b", want: local},
		{url: "local:nobody", wantErr: true},
		{url: "ftp://pub.example.com", wantErr: true},
		{url: "http://", wantErr: true},
		{url: "pub.example.com", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			p, err := d.Dial(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedPeer)
				return
			}
			require.NoError(t, err)
			defer p.Close()
			if lp, ok := tt.want.(*LocalPub); ok {
				assert.Same(t, lp, p)
				return
			}
			assert.IsType(t, tt.want, p)
		})
	}
}

func TestDialAll_ClosesOnFailure(t *testing.T) {
	var d Dialer
	_, err := d.DialAll([]string{"http://a.example.com", "bogus://x"})
	assert.ErrorIs(t, err, ErrUnsupportedPeer)

	pubs, err := d.DialAll([]string{"http://a.example.com", "grpc://b.example.com:7070"})
	require.NoError(t, err)
	assert.Len(t, pubs, 2)
	CloseAll(pubs)
}
