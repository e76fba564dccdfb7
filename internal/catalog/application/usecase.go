package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-market/internal/catalog/domain"
	"go-market/internal/catalog/ports"
	"go-market/pkg/logger"
)

// CatalogUseCase handles item listings and seller delivery setup
type CatalogUseCase struct {
	items    ports.ItemRepository
	options  ports.OptionsRepository
	delivery ports.DeliveryRepository
	log      *logger.Logger
}

// NewCatalogUseCase creates a new catalog use case
func NewCatalogUseCase(items ports.ItemRepository, options ports.OptionsRepository, delivery ports.DeliveryRepository, log *logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		items:    items,
		options:  options,
		delivery: delivery,
		log:      log,
	}
}

// CreateItemInput represents the input for creating an item
type CreateItemInput struct {
	OwnerProfileID   uuid.UUID
	Name             string
	Description      string
	Price            decimal.Decimal
	DiscountBrackets []domain.DiscountBracket
	UseInStock       bool
	InStock          int
	Options          *domain.ItemOptions
}

// CreateItem creates a new active item for the calling seller
func (uc *CatalogUseCase) CreateItem(ctx context.Context, input CreateItemInput) (*domain.Item, error) {
	item, err := domain.NewItem(
		input.OwnerProfileID,
		input.Name,
		input.Description,
		input.Price,
		input.DiscountBrackets,
		input.UseInStock,
		input.InStock,
		input.Options,
	)
	if err != nil {
		return nil, err
	}

	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("item created",
		zap.String("item_id", item.ID.String()),
		zap.String("owner_profile_id", item.OwnerProfileID.String()),
	)
	return item, nil
}

// GetItem retrieves an item by ID
func (uc *CatalogUseCase) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return uc.items.GetByID(ctx, id)
}

// Page bounds a listing
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to sane bounds
func (p Page) Normalize() Page {
	if p.Limit <= 0 || p.Limit > maxPageSize {
		p.Limit = defaultPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListItemsByOwner lists a seller's items. Inactive items are only listed for the owner.
func (uc *CatalogUseCase) ListItemsByOwner(ctx context.Context, owner, caller uuid.UUID, page Page) ([]*domain.Item, error) {
	page = page.Normalize()
	return uc.items.ListByOwner(ctx, owner, owner != caller, page.Limit, page.Offset)
}

// SetItemActive activates or deactivates an item owned by caller
func (uc *CatalogUseCase) SetItemActive(ctx context.Context, caller, id uuid.UUID, active bool) (*domain.Item, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.OwnerProfileID != caller {
		return nil, domain.ErrNotOwner
	}

	if err := uc.items.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	item.Active = active

	uc.log.WithContext(ctx).Info("item activity changed",
		zap.String("item_id", id.String()),
		zap.Bool("active", active),
	)
	return item, nil
}

// PutDefaultOptions stores the seller's default selling policy
func (uc *CatalogUseCase) PutDefaultOptions(ctx context.Context, owner uuid.UUID, options *domain.ItemOptions) error {
	if err := options.Validate(); err != nil {
		return err
	}
	return uc.options.Put(ctx, owner, options)
}

// GetDefaultOptions returns the seller's default selling policy, nil if unset
func (uc *CatalogUseCase) GetDefaultOptions(ctx context.Context, owner uuid.UUID) (*domain.ItemOptions, error) {
	return uc.options.Get(ctx, owner)
}

// CreateDeliveryEvent schedules a delivery slot for the seller
func (uc *CatalogUseCase) CreateDeliveryEvent(ctx context.Context, owner uuid.UUID, title string, startsAt time.Time) (*domain.DeliveryEvent, error) {
	title = strings.TrimSpace(title)
	if title == "" || startsAt.IsZero() {
		return nil, domain.ErrTitleRequired
	}

	event := &domain.DeliveryEvent{
		ID:             uuid.New(),
		OwnerProfileID: owner,
		Title:          title,
		StartsAt:       startsAt.UTC(),
	}
	if err := uc.delivery.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListDeliveryEvents lists a seller's delivery events
func (uc *CatalogUseCase) ListDeliveryEvents(ctx context.Context, owner uuid.UUID) ([]*domain.DeliveryEvent, error) {
	return uc.delivery.ListEvents(ctx, owner)
}

// CreatePickupLocation registers a pickup location for the seller
func (uc *CatalogUseCase) CreatePickupLocation(ctx context.Context, owner uuid.UUID, label, address string) (*domain.PickupLocation, error) {
	label, address = strings.TrimSpace(label), strings.TrimSpace(address)
	if label == "" || address == "" {
		return nil, domain.ErrAddressRequired
	}

	location := &domain.PickupLocation{
		ID:             uuid.New(),
		OwnerProfileID: owner,
		Label:          label,
		Address:        address,
	}
	if err := uc.delivery.CreateLocation(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

// ListPickupLocations lists a seller's pickup locations
func (uc *CatalogUseCase) ListPickupLocations(ctx context.Context, owner uuid.UUID) ([]*domain.PickupLocation, error) {
	return uc.delivery.ListLocations(ctx, owner)
}
