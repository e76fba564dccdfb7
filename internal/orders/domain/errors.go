package domain

import (
	"github.com/google/uuid"

	"go-market/pkg/errors"
)

// Request validation
var (
	ErrEmptyOrder             = errors.NewValidation("order must contain at least one item", nil)
	ErrInvalidQuantity        = errors.NewValidation("item quantities must be greater than 0", nil)
	ErrPaymentOptionRequired  = errors.NewValidation("payment_option is required", nil)
	ErrInvalidDeliveryDate    = errors.NewValidation("estimated delivery date must be RFC 3339 or YYYY-MM-DD", nil)
	ErrBuyerRequired          = errors.NewValidation("buyer profile is required", nil)
	ErrSellerNotResolvable    = errors.NewForbidden("seller profile can not be resolved", nil)
	ErrDeliveryTargetMismatch = errors.NewForbidden("delivery event or pickup location belongs to another seller", nil)
)

// Creation preconditions
var (
	ErrMixedOwners             = errors.NewForbidden("all items of an order must belong to one seller", nil)
	ErrBuyerOwnsItem           = errors.NewForbidden("buyer can not order own items", nil)
	ErrPaymentUnsupported      = errors.NewForbidden("payment option is not supported by every item", nil)
	ErrShippingUnsupported     = errors.NewForbidden("shipping option is not supported by every item", nil)
	ErrHomeDeliveryUnsupported = errors.NewForbidden("home delivery is not offered for these items", nil)
	ErrMixedCurrencies         = errors.NewForbidden("all items of an order must share one base currency", nil)
)

// Transition guards
var (
	ErrCannotBeCancelled        = errors.NewConflict("order can not be cancelled")
	ErrFinalized                = errors.NewConflict("order is finalized")
	ErrNotPending               = errors.NewConflict("order is not pending")
	ErrAcceptNotRequired        = errors.NewConflict("order does not require acceptance")
	ErrNotAccepted              = errors.NewConflict("order has not been accepted yet")
	ErrDeliveryAlreadyConfirmed = errors.NewConflict("delivery already confirmed")
	ErrPaymentAlreadyConfirmed  = errors.NewConflict("payment already confirmed")
	ErrAlreadyPaid              = errors.NewConflict("order is already paid")
	ErrConcurrentUpdate         = errors.NewConflict("order was modified concurrently, retry")
	ErrNotSeller                = errors.NewUnauthorized("profile is not the seller of this order")
	ErrNotBuyer                 = errors.NewUnauthorized("profile is not the buyer of this order")
	ErrNoAccess                 = errors.NewUnauthorized("profile is not a participant of this order")
)

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id uuid.UUID) error {
	return errors.NewNotFound("order", id)
}

// NewItemsNotFound reports requested items that are missing or inactive
func NewItemsNotFound(missing []uuid.UUID) error {
	ids := make([]string, 0, len(missing))
	for _, id := range missing {
		ids = append(ids, id.String())
	}
	return &errors.AppError{
		Code:    errors.CodeNotFound,
		Message: "some items are missing or inactive",
		Details: map[string]interface{}{"item_ids": ids},
	}
}

// NewInsufficientStock reports a line asking for more than the item has in stock
func NewInsufficientStock(itemID uuid.UUID, requested, available int) error {
	return errors.NewForbidden("not enough items in stock", map[string]interface{}{
		"item_id":   itemID.String(),
		"requested": requested,
		"available": available,
	})
}

// NewInvalidTransition reports an action that has no transition from the current status
func NewInvalidTransition(from Status, action Action) error {
	return errors.NewConflict("can not " + string(action) + " an order in status " + string(from))
}
