package ordertest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"go-market/internal/orders/domain"
	"go-market/internal/orders/ports"
	"go-market/pkg/errors"
	"go-market/pkg/payments"
)

// Profiles is an in-memory ports.ProfileDirectory
type Profiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]ports.ProfileInfo
}

// NewProfiles creates a directory holding the given profiles
func NewProfiles(profiles ...ports.ProfileInfo) *Profiles {
	p := &Profiles{profiles: map[uuid.UUID]ports.ProfileInfo{}}
	for _, info := range profiles {
		p.Put(info)
	}
	return p
}

// Put adds or replaces a profile
func (p *Profiles) Put(info ports.ProfileInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[info.ID] = info
}

// GetProfile returns a stored profile or NOT_FOUND
func (p *Profiles) GetProfile(_ context.Context, id uuid.UUID) (*ports.ProfileInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	info, ok := p.profiles[id]
	if !ok {
		return nil, errors.NewNotFound("profile", id)
	}
	return &info, nil
}

// VerifyProfileOwner fails unless the profile exists and belongs to userID
func (p *Profiles) VerifyProfileOwner(ctx context.Context, userID string, profileID uuid.UUID) error {
	info, err := p.GetProfile(ctx, profileID)
	if err != nil || info.UserID != userID {
		return errors.NewForbidden("profile does not belong to the caller", nil)
	}
	return nil
}

// Gateway is a scripted ports.PaymentGateway
type Gateway struct {
	mu     sync.Mutex
	Err    error
	Calls  []payments.PaymentIntentParams
	Result payments.PaymentIntentResult
}

// NewGateway returns a gateway that answers every call with a fixed intent
func NewGateway() *Gateway {
	return &Gateway{Result: payments.PaymentIntentResult{
		PaymentIntentID: "pi_test",
		ClientSecret:    "pi_test_secret",
		CustomerID:      "cus_test",
		EphemeralKey:    "ek_test",
	}}
}

// PerformPaymentIntent records params and returns Result or Err
func (g *Gateway) PerformPaymentIntent(_ context.Context, params payments.PaymentIntentParams) (*payments.PaymentIntentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls = append(g.Calls, params)
	if g.Err != nil {
		return nil, g.Err
	}
	res := g.Result
	return &res, nil
}

// Publisher records published events. Set Err to make every publish fail.
type Publisher struct {
	mu     sync.Mutex
	Err    error
	events []domain.Event
}

// Publish records e or returns Err
func (p *Publisher) Publish(_ context.Context, e domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, e)
	return nil
}

// Keys returns the keys of published events in order
func (p *Publisher) Keys() []domain.EventKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]domain.EventKey, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.EventKey)
	}
	return keys
}

// Reset forgets published events
func (p *Publisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
