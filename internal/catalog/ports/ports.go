package ports

import (
	"context"

	"github.com/google/uuid"

	"go-market/internal/catalog/domain"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// Create creates a new item
	Create(ctx context.Context, item *domain.Item) error

	// GetByID retrieves an item by ID regardless of its active flag
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)

	// ListByOwner lists a page of a seller profile's items, newest first
	ListByOwner(ctx context.Context, owner uuid.UUID, activeOnly bool, limit, offset int) ([]*domain.Item, error)

	// FetchActiveByIDs returns the active items among ids. Missing or inactive ids are omitted.
	FetchActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Item, error)

	// SetActive toggles whether the item can be ordered
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// AdjustStock moves in_stock and sold by the given deltas in one conditional statement.
	// in_stock only moves for items with use_in_stock. A change that would make a counter
	// negative fails with a conflict and leaves the row untouched.
	AdjustStock(ctx context.Context, id uuid.UUID, deltaInStock, deltaSold int) (*domain.Item, error)
}

// OptionsRepository stores the default selling policy of each seller
type OptionsRepository interface {
	Put(ctx context.Context, owner uuid.UUID, options *domain.ItemOptions) error

	// Get returns nil options without error when the seller has none
	Get(ctx context.Context, owner uuid.UUID) (*domain.ItemOptions, error)
}

// DeliveryRepository stores delivery events and pickup locations
type DeliveryRepository interface {
	CreateEvent(ctx context.Context, event *domain.DeliveryEvent) error
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.DeliveryEvent, error)
	ListEvents(ctx context.Context, owner uuid.UUID) ([]*domain.DeliveryEvent, error)

	CreateLocation(ctx context.Context, location *domain.PickupLocation) error
	GetLocation(ctx context.Context, id uuid.UUID) (*domain.PickupLocation, error)
	ListLocations(ctx context.Context, owner uuid.UUID) ([]*domain.PickupLocation, error)
}
