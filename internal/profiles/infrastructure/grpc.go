package infrastructure

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	profilesv1 "go-market/api/profiles/v1"
	"go-market/internal/profiles/application"
	"go-market/pkg/errors"
)

// GRPCServer implements the gRPC ProfileServiceServer
type GRPCServer struct {
	useCase *application.ProfileUseCase
}

// NewGRPCServer creates a new gRPC server
func NewGRPCServer(useCase *application.ProfileUseCase) *GRPCServer {
	return &GRPCServer{useCase: useCase}
}

var _ profilesv1.ProfileServiceServer = (*GRPCServer)(nil)

// GetProfile implements ProfileServiceServer.GetProfile
func (s *GRPCServer) GetProfile(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := uuid.Parse(req.GetValue())
	if err != nil {
		return nil, errors.NewValidation("invalid profile id", nil)
	}

	output, err := s.useCase.GetProfile(ctx, application.GetProfileInput{ID: id})
	if err != nil {
		return nil, err
	}

	p := output.Profile
	msg := &profilesv1.Profile{
		ID:               p.ID.String(),
		UserID:           p.UserID,
		Kind:             string(p.Kind),
		Name:             p.Name,
		Email:            p.Email,
		PaymentAccountID: p.PaymentAccountID,
		CreatedAt:        p.CreatedAt,
	}
	out, err := msg.ToStruct()
	if err != nil {
		return nil, errors.NewInternal("failed to encode profile", err)
	}
	return out, nil
}
