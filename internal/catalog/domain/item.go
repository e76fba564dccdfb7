package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountBracket replaces the base price once the ordered quantity reaches MinimumQuantity
type DiscountBracket struct {
	MinimumQuantity int             `json:"minimum_quantity"`
	Price           decimal.Decimal `json:"price"`
}

// Item is a catalog listing owned by a seller profile
type Item struct {
	ID               uuid.UUID         `json:"id"`
	OwnerProfileID   uuid.UUID         `json:"owner_profile_id"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	Price            decimal.Decimal   `json:"price"`
	DiscountBrackets []DiscountBracket `json:"discount_brackets,omitempty"`
	InStock          int               `json:"in_stock"`
	Sold             int               `json:"sold"`
	UseInStock       bool              `json:"use_in_stock"`
	Active           bool              `json:"active"`
	Options          *ItemOptions      `json:"item_options,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewItem creates an active item with validation. Stock counters start at inStock and zero sold.
func NewItem(owner uuid.UUID, name, description string, price decimal.Decimal, brackets []DiscountBracket, useInStock bool, inStock int, options *ItemOptions) (*Item, error) {
	now := time.Now()
	item := &Item{
		ID:               uuid.New(),
		OwnerProfileID:   owner,
		Name:             strings.TrimSpace(name),
		Description:      description,
		Price:            price,
		DiscountBrackets: brackets,
		InStock:          inStock,
		UseInStock:       useInStock,
		Active:           true,
		Options:          options,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate validates the item entity
func (i *Item) Validate() error {
	if i.OwnerProfileID == uuid.Nil {
		return ErrOwnerRequired
	}
	if i.Name == "" {
		return ErrNameRequired
	}
	if len(i.Name) > 200 {
		return ErrNameLength
	}
	if !i.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if i.InStock < 0 || i.Sold < 0 {
		return ErrNegativeStock
	}

	seen := make(map[int]struct{}, len(i.DiscountBrackets))
	for _, b := range i.DiscountBrackets {
		if b.MinimumQuantity < 1 || !b.Price.IsPositive() {
			return ErrInvalidBracket
		}
		if _, dup := seen[b.MinimumQuantity]; dup {
			return ErrDuplicateBracket
		}
		seen[b.MinimumQuantity] = struct{}{}
	}

	if i.Options != nil {
		return i.Options.Validate()
	}
	return nil
}

// ResolveOptions returns the item's own options, falling back to the seller defaults
func (i *Item) ResolveOptions(defaults *ItemOptions) *ItemOptions {
	if i.Options != nil {
		return i.Options
	}
	return defaults
}

// DeliveryEvent is a scheduled hand-over slot offered by a seller
type DeliveryEvent struct {
	ID             uuid.UUID `json:"id"`
	OwnerProfileID uuid.UUID `json:"owner_profile_id"`
	Title          string    `json:"title"`
	StartsAt       time.Time `json:"starts_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// PickupLocation is a place where buyers collect their orders
type PickupLocation struct {
	ID             uuid.UUID `json:"id"`
	OwnerProfileID uuid.UUID `json:"owner_profile_id"`
	Label          string    `json:"label"`
	Address        string    `json:"address"`
	CreatedAt      time.Time `json:"created_at"`
}
