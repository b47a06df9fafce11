package pub

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/pubwire"
)

// GRPCServer exposes a Service over the Pub gRPC service.
type GRPCServer struct {
	pubwire.UnimplementedPubServer
	Service *Service
}

// RegisterGRPC registers svc on s.
func RegisterGRPC(s grpc.ServiceRegistrar, svc *Service) {
	pubwire.RegisterPubServer(s, &GRPCServer{Service: svc})
}

func (g *GRPCServer) List(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if g == nil || g.Service == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing service")
	}
	var req pubwire.ListRequest
	if err := json.Unmarshal([]byte(in.GetValue()), &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed list request")
	}
	docs, err := g.Service.List(ctx, req.Workspace, req.Prefix)
	if err != nil {
		return nil, mapErr(err)
	}
	if docs == nil {
		docs = []doc.Document{}
	}
	out, err := json.Marshal(docs)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Bytes(out), nil
}

func (g *GRPCServer) Submit(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.Int64Value, error) {
	if g == nil || g.Service == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing service")
	}
	var req pubwire.SubmitRequest
	if err := json.Unmarshal(in.GetValue(), &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed submit request")
	}
	n, err := g.Service.Ingest(ctx, req.Workspace, req.Documents)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Int64(int64(n)), nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, doc.ErrInvalidWorkspace):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrRegistryClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
