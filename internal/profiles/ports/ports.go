package ports

import (
	"context"

	"github.com/google/uuid"

	"go-market/internal/profiles/domain"
)

// ProfileRepository defines the interface for profile persistence
type ProfileRepository interface {
	// Create creates a new profile
	Create(ctx context.Context, profile *domain.Profile) error

	// GetByID retrieves a profile by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)

	// ListByUser lists every profile of a user
	ListByUser(ctx context.Context, userID string) ([]*domain.Profile, error)

	// RecordOrderCompleted bumps the seller's sales and the buyer's purchases once per order.
	// It reports false when the order was already recorded.
	RecordOrderCompleted(ctx context.Context, orderID, buyerID, sellerID uuid.UUID) (bool, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// PublishProfileCreated publishes a profile created event
	PublishProfileCreated(ctx context.Context, profile *domain.Profile) error
}

// AccountCreator opens payout accounts at the payment gateway
type AccountCreator interface {
	CreateAccount(ctx context.Context, email string) (string, error)
}
