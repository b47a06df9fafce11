package pubwire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "slimecats.pub.v1.Pub"

const (
	listMethod   = "/" + ServiceName + "/List"
	submitMethod = "/" + ServiceName + "/Submit"
)

// PubServer is the server API for the Pub gRPC service.
//
// The service uses protobuf well-known wrapper types around JSON bodies so no
// protoc toolchain is needed. List takes a JSON ListRequest and returns a
// JSON document array. Submit takes a JSON SubmitRequest and returns the
// number of documents applied.
type PubServer interface {
	List(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Submit(context.Context, *wrapperspb.BytesValue) (*wrapperspb.Int64Value, error)
}

// UnimplementedPubServer can be embedded to have forward compatible implementations.
type UnimplementedPubServer struct{}

func (UnimplementedPubServer) List(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method List not implemented")
}
func (UnimplementedPubServer) Submit(context.Context, *wrapperspb.BytesValue) (*wrapperspb.Int64Value, error) {
	return nil, status.Error(codes.Unimplemented, "method Submit not implemented")
}

// RegisterPubServer registers the Pub service on a gRPC server.
func RegisterPubServer(s grpc.ServiceRegistrar, srv PubServer) {
	s.RegisterService(&Pub_ServiceDesc, srv)
}

// PubClient is the client API for the Pub gRPC service.
type PubClient interface {
	List(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Submit(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
}

type pubClient struct{ cc grpc.ClientConnInterface }

func NewPubClient(cc grpc.ClientConnInterface) PubClient { return &pubClient{cc: cc} }

func (c *pubClient) List(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, listMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pubClient) Submit(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, submitMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _Pub_List_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PubServer).List(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PubServer).List(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Pub_Submit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PubServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: submitMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PubServer).Submit(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Pub_ServiceDesc is the grpc.ServiceDesc for the Pub service.
var Pub_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PubServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "List", Handler: _Pub_List_Handler},
		{MethodName: "Submit", Handler: _Pub_Submit_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pub.proto",
}
