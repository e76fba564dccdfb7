package domain

import (
	"github.com/google/uuid"

	"go-market/pkg/errors"
)

// Domain-specific errors
var (
	ErrOwnerRequired    = errors.NewValidation("owner_profile_id is required", nil)
	ErrNameRequired     = errors.NewValidation("name is required", nil)
	ErrNameLength       = errors.NewValidation("name cannot exceed 200 characters", nil)
	ErrInvalidPrice     = errors.NewValidation("price must be greater than 0", nil)
	ErrNegativeStock    = errors.NewValidation("stock counters cannot be negative", nil)
	ErrInvalidBracket   = errors.NewValidation("discount brackets need minimum_quantity >= 1 and a positive price", nil)
	ErrDuplicateBracket = errors.NewValidation("discount bracket minimum quantities must be unique", nil)
	ErrInvalidCurrency  = errors.NewValidation("base_currency must be a 3-letter code", nil)
	ErrNoPaymentOptions = errors.NewValidation("at least one payment option with a kind is required", nil)
	ErrInvalidShipping  = errors.NewValidation("shipping options need a label and a non-negative price", nil)
	ErrTitleRequired    = errors.NewValidation("title is required", nil)
	ErrAddressRequired  = errors.NewValidation("label and address are required", nil)
	ErrNotOwner         = errors.NewForbidden("profile does not own this resource", nil)
)

// NewItemNotFound creates a not found error with the item ID
func NewItemNotFound(id uuid.UUID) error {
	return errors.NewNotFound("item", id)
}

// NewInsufficientStock reports a stock adjustment that would take a counter below zero
func NewInsufficientStock(id uuid.UUID, deltaInStock int) error {
	return &errors.AppError{
		Code:    errors.CodeConflict,
		Message: "insufficient stock",
		Details: map[string]interface{}{
			"item_id":  id.String(),
			"in_stock": deltaInStock,
		},
	}
}

// NewDeliveryEventNotFound creates a not found error for a delivery event
func NewDeliveryEventNotFound(id uuid.UUID) error {
	return errors.NewNotFound("delivery event", id)
}

// NewPickupLocationNotFound creates a not found error for a pickup location
func NewPickupLocationNotFound(id uuid.UUID) error {
	return errors.NewNotFound("pickup location", id)
}
