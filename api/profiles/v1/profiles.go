// Package profilesv1 declares the profiles.v1.ProfileService gRPC contract.
// Requests carry the profile id as a StringValue and responses are Structs
// holding the Profile fields under their JSON names.
package profilesv1

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully qualified service name
	ServiceName = "profiles.v1.ProfileService"
	// GetProfileMethod is the full method name of GetProfile
	GetProfileMethod = "/" + ServiceName + "/GetProfile"
)

// Profile is the message returned by GetProfile
type Profile struct {
	ID               string
	UserID           string
	Kind             string
	Name             string
	Email            string
	PaymentAccountID string
	CreatedAt        time.Time
}

// ToStruct encodes the profile as a Struct message
func (p *Profile) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":                 p.ID,
		"user_id":            p.UserID,
		"kind":               p.Kind,
		"name":               p.Name,
		"email":              p.Email,
		"payment_account_id": p.PaymentAccountID,
		"created_at":         p.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// ProfileFromStruct decodes a Struct produced by ToStruct
func ProfileFromStruct(s *structpb.Struct) (*Profile, error) {
	f := s.GetFields()
	if f["id"].GetStringValue() == "" {
		return nil, fmt.Errorf("profile message has no id")
	}

	created, _ := time.Parse(time.RFC3339, f["created_at"].GetStringValue())
	return &Profile{
		ID:               f["id"].GetStringValue(),
		UserID:           f["user_id"].GetStringValue(),
		Kind:             f["kind"].GetStringValue(),
		Name:             f["name"].GetStringValue(),
		Email:            f["email"].GetStringValue(),
		PaymentAccountID: f["payment_account_id"].GetStringValue(),
		CreatedAt:        created,
	}, nil
}

// ProfileServiceServer is the server API for ProfileService
type ProfileServiceServer interface {
	GetProfile(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterProfileServiceServer registers srv on s
func RegisterProfileServiceServer(s grpc.ServiceRegistrar, srv ProfileServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func getProfileHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProfileServiceServer).GetProfile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetProfileMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ProfileServiceServer).GetProfile(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for ProfileService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProfileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProfile", Handler: getProfileHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "profiles/v1/profiles.proto",
}

// ProfileServiceClient is the client API for ProfileService
type ProfileServiceClient interface {
	GetProfile(ctx context.Context, id *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type profileServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewProfileServiceClient creates a client on cc
func NewProfileServiceClient(cc grpc.ClientConnInterface) ProfileServiceClient {
	return &profileServiceClient{cc: cc}
}

func (c *profileServiceClient) GetProfile(ctx context.Context, id *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetProfileMethod, id, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
