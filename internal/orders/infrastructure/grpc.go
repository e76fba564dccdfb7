package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	ordersv1 "go-market/api/orders/v1"
	"go-market/internal/orders/application"
	"go-market/pkg/errors"
)

// GRPCServer implements the gRPC OrderServiceServer
type GRPCServer struct {
	useCase *application.OrderUseCase
}

// NewGRPCServer creates a new gRPC server
func NewGRPCServer(useCase *application.OrderUseCase) *GRPCServer {
	return &GRPCServer{useCase: useCase}
}

var _ ordersv1.OrderServiceServer = (*GRPCServer)(nil)

// GetOrder implements OrderServiceServer.GetOrder
func (s *GRPCServer) GetOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := uuid.Parse(req.GetValue())
	if err != nil {
		return nil, errors.NewValidation("invalid order id", nil)
	}

	profileID, err := profileFromMetadata(ctx)
	if err != nil {
		return nil, err
	}

	output, err := s.useCase.GetOrder(ctx, application.GetOrderInput{ID: id, ProfileID: profileID})
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(output.Order)
	if err != nil {
		return nil, errors.NewInternal("failed to encode order", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, errors.NewInternal("failed to encode order", err)
	}
	return out, nil
}

func profileFromMetadata(ctx context.Context) (uuid.UUID, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get(ordersv1.ProfileMetadataKey)
	if len(values) == 0 {
		return uuid.Nil, errors.NewUnauthorized("missing " + ordersv1.ProfileMetadataKey + " metadata")
	}
	id, err := uuid.Parse(values[0])
	if err != nil {
		return uuid.Nil, errors.NewValidation("invalid profile id", nil)
	}
	return id, nil
}
