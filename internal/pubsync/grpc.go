package pubsync

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/pubwire"
)

// GRPCPub talks to a pub over the Pub gRPC service.
type GRPCPub struct {
	url    string
	client pubwire.PubClient
	close  func() error
}

// NewGRPCPub wraps an existing connection. The caller keeps ownership of cc.
func NewGRPCPub(url string, cc grpc.ClientConnInterface) *GRPCPub {
	return newGRPCPub(url, cc, nil)
}

func newGRPCPub(url string, cc grpc.ClientConnInterface, closeFn func() error) *GRPCPub {
	return &GRPCPub{url: url, client: pubwire.NewPubClient(cc), close: closeFn}
}

func (p *GRPCPub) URL() string { return p.url }

func (p *GRPCPub) ListDocuments(ctx context.Context, workspace, prefix string) ([]doc.Document, error) {
	req, err := json.Marshal(pubwire.ListRequest{Workspace: workspace, Prefix: prefix})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p.url, err)
	}
	reply, err := p.client.List(ctx, wrapperspb.String(string(req)))
	if err != nil {
		return nil, mapRPC(ctx, err)
	}

	var docs []doc.Document
	if err := json.Unmarshal(reply.GetValue(), &docs); err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrMalformedResponse, p.url, err)
	}
	return docs, nil
}

func (p *GRPCPub) SubmitDocuments(ctx context.Context, workspace string, docs []doc.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	req, err := json.Marshal(pubwire.SubmitRequest{Workspace: workspace, Documents: docs})
	if err != nil {
		return 0, fmt.Errorf("submit %s: %w", p.url, err)
	}
	reply, err := p.client.Submit(ctx, wrapperspb.Bytes(req))
	if err != nil {
		return 0, mapRPC(ctx, err)
	}
	return int(reply.GetValue()), nil
}

func (p *GRPCPub) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

func mapRPC(ctx context.Context, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return classify(ctx, err)
	}
	switch st.Code() {
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", ErrPeerUnreachable, st.Message())
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrPeerTimeout, st.Message())
	case codes.Canceled:
		return classify(ctx, context.Canceled)
	default:
		return fmt.Errorf("%w: %s: %s", ErrMalformedResponse, st.Code(), st.Message())
	}
}
