package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	catalog "go-market/internal/catalog/domain"
	"go-market/internal/orders/domain"
	"go-market/pkg/payments"
)

// Role selects which side of an order a listing is about
type Role string

// Listing roles
const (
	RoleAny    Role = "any"
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// ListFilter narrows ListOrders
type ListFilter struct {
	ProfileID uuid.UUID
	Role      Role
	Status    domain.Status
	Limit     int
	Offset    int
	Ascending bool
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create creates a new order
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// Update saves the order if nobody else did since it was read, then bumps its version
	Update(ctx context.Context, order *domain.Order) error

	// List returns one page of orders and the total count matching the filter
	List(ctx context.Context, filter ListFilter) ([]*domain.Order, int64, error)
}

// ItemRepository is the slice of the catalog the order flow needs
type ItemRepository interface {
	FetchActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Item, error)
	AdjustStock(ctx context.Context, id uuid.UUID, deltaInStock, deltaSold int) (*catalog.Item, error)
}

// OptionsRepository reads seller default item options
type OptionsRepository interface {
	Get(ctx context.Context, owner uuid.UUID) (*catalog.ItemOptions, error)
}

// DeliveryRepository reads delivery events and pickup locations
type DeliveryRepository interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*catalog.DeliveryEvent, error)
	GetLocation(ctx context.Context, id uuid.UUID) (*catalog.PickupLocation, error)
}

// Outbox stores events in the same transaction as the order change
type Outbox interface {
	Append(ctx context.Context, events ...domain.Event) error

	// FetchPending returns unsent events created before the cutoff, oldest first
	FetchPending(ctx context.Context, before time.Time, limit int) ([]domain.Event, error)

	MarkSent(ctx context.Context, ids ...uuid.UUID) error
}

// Store gives access to every repository and runs units of work
type Store interface {
	Orders() OrderRepository
	Items() ItemRepository
	Options() OptionsRepository
	Delivery() DeliveryRepository
	Outbox() Outbox

	// WithinTx runs fn against a store bound to one transaction. An error from fn rolls everything back.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// EventPublisher defines the interface for publishing order events
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// ProfileInfo is what orders need to know about a profile
type ProfileInfo struct {
	ID               uuid.UUID
	UserID           string
	Name             string
	Email            string
	PaymentAccountID string
}

// ProfileDirectory resolves profiles owned by the profile service
type ProfileDirectory interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*ProfileInfo, error)
}

// PaymentGateway creates payment intents
type PaymentGateway interface {
	PerformPaymentIntent(ctx context.Context, params payments.PaymentIntentParams) (*payments.PaymentIntentResult, error)
}
