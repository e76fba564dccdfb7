package domain

import (
	"github.com/google/uuid"

	"go-market/pkg/errors"
)

// Domain-specific errors
var (
	ErrUserRequired  = errors.NewValidation("user id is required", nil)
	ErrKindInvalid   = errors.NewValidation("kind must be one of business, consumer, provider", nil)
	ErrNameRequired  = errors.NewValidation("name is required", nil)
	ErrNameLength    = errors.NewValidation("name must be between 2 and 100 characters", nil)
	ErrEmailRequired = errors.NewValidation("email is required", nil)
	ErrEmailInvalid  = errors.NewValidation("email format is invalid", nil)
	ErrNotOwner      = errors.NewForbidden("profile does not belong to the authenticated user", nil)
)

// NewProfileNotFound creates a not found error with the profile ID
func NewProfileNotFound(id uuid.UUID) error {
	return errors.NewNotFound("profile", id)
}
