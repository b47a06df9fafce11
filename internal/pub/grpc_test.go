package pub

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/pubwire"
	"github.com/roach88/slimecats/internal/testutil"
)

func newBufconnClient(t *testing.T, svc *Service) pubwire.PubClient {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterGRPC(srv, svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { cc.Close() })
	return pubwire.NewPubClient(cc)
}

func TestGRPC_SubmitAndList(t *testing.T) {
	client := newBufconnClient(t, newTestService(t))
	ctx := context.Background()
	docs := authorDocs(t, map[string]string{"/a": "1", "/b/c": "2"})

	body, err := json.Marshal(pubwire.SubmitRequest{Workspace: testutil.Workspace, Documents: docs})
	require.NoError(t, err)
	n, err := client.Submit(ctx, wrapperspb.Bytes(body))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n.GetValue())

	req, err := json.Marshal(pubwire.ListRequest{Workspace: testutil.Workspace, Prefix: "/b"})
	require.NoError(t, err)
	reply, err := client.List(ctx, wrapperspb.String(string(req)))
	require.NoError(t, err)

	var got []doc.Document
	require.NoError(t, json.Unmarshal(reply.GetValue(), &got))
	assert.Equal(t, docs[1:], got)
}

func TestGRPC_Errors(t *testing.T) {
	client := newBufconnClient(t, newTestService(t))
	ctx := context.Background()

	_, err := client.List(ctx, wrapperspb.String("{"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	req, err := json.Marshal(pubwire.ListRequest{Workspace: "nope"})
	require.NoError(t, err)
	_, err = client.List(ctx, wrapperspb.String(string(req)))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Submit(ctx, wrapperspb.Bytes([]byte("not json")))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
