// Package ordersv1 declares the orders.v1.OrderService gRPC contract.
// GetOrder takes the order id as a StringValue and answers with the order
// rendered as a Struct using the same JSON field names as the HTTP API.
package ordersv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully qualified service name
	ServiceName = "orders.v1.OrderService"
	// GetOrderMethod is the full method name of GetOrder
	GetOrderMethod = "/" + ServiceName + "/GetOrder"

	// ProfileMetadataKey carries the acting profile id, which must be a participant
	ProfileMetadataKey = "x-profile-id"
)

// OrderServiceServer is the server API for OrderService
type OrderServiceServer interface {
	GetOrder(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterOrderServiceServer registers srv on s
func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func getOrderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetOrderMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).GetOrder(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for OrderService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetOrder", Handler: getOrderHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orders/v1/orders.proto",
}

// OrderServiceClient is the client API for OrderService
type OrderServiceClient interface {
	GetOrder(ctx context.Context, id *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type orderServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderServiceClient creates a client on cc
func NewOrderServiceClient(cc grpc.ClientConnInterface) OrderServiceClient {
	return &orderServiceClient{cc: cc}
}

func (c *orderServiceClient) GetOrder(ctx context.Context, id *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetOrderMethod, id, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
