package adapters

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"

	profilesv1 "go-market/api/profiles/v1"
	"go-market/internal/orders/ports"
	"go-market/pkg/errors"
	grpcpkg "go-market/pkg/grpc"
)

// GRPCProfileClient implements ProfileDirectory using gRPC
type GRPCProfileClient struct {
	client profilesv1.ProfileServiceClient
	conn   *grpc.ClientConn
}

// NewGRPCProfileClient dials the profiles service
func NewGRPCProfileClient(addr string, timeout time.Duration, tls grpcpkg.TLSFiles) (*GRPCProfileClient, error) {
	creds, err := grpcpkg.DialOption(tls)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.Dial(addr,
		creds,
		grpc.WithUnaryInterceptor(grpcpkg.UnaryClientInterceptor(timeout)),
	)
	if err != nil {
		return nil, err
	}

	return NewGRPCProfileClientFromConn(conn), nil
}

// NewGRPCProfileClientFromConn wraps an existing connection
func NewGRPCProfileClientFromConn(conn *grpc.ClientConn) *GRPCProfileClient {
	return &GRPCProfileClient{
		client: profilesv1.NewProfileServiceClient(conn),
		conn:   conn,
	}
}

// GetProfile retrieves a profile by ID via gRPC
func (c *GRPCProfileClient) GetProfile(ctx context.Context, id uuid.UUID) (*ports.ProfileInfo, error) {
	resp, err := c.client.GetProfile(ctx, wrapperspb.String(id.String()))
	if err != nil {
		return nil, err
	}

	p, err := profilesv1.ProfileFromStruct(resp)
	if err != nil {
		return nil, errors.NewUpstream("malformed profile response", err)
	}
	pid, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, errors.NewUpstream("malformed profile id", err)
	}

	return &ports.ProfileInfo{
		ID:               pid,
		UserID:           p.UserID,
		Name:             p.Name,
		Email:            p.Email,
		PaymentAccountID: p.PaymentAccountID,
	}, nil
}

// VerifyProfileOwner fails unless the profile belongs to the user
func (c *GRPCProfileClient) VerifyProfileOwner(ctx context.Context, userID string, profileID uuid.UUID) error {
	p, err := c.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return errors.NewForbidden("profile does not belong to the caller", nil)
		}
		return err
	}
	if p.UserID != userID {
		return errors.NewForbidden("profile does not belong to the caller", nil)
	}
	return nil
}

// Close closes the gRPC connection
func (c *GRPCProfileClient) Close() error {
	return c.conn.Close()
}
