package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the role a profile plays in the marketplace
type Kind string

// Profile kinds
const (
	KindBusiness Kind = "business"
	KindConsumer Kind = "consumer"
	KindProvider Kind = "provider"
)

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	switch k {
	case KindBusiness, KindConsumer, KindProvider:
		return true
	}
	return false
}

// Profile is one marketplace identity of a user. A user may own several.
type Profile struct {
	ID                 uuid.UUID
	UserID             string
	Kind               Kind
	Name               string
	Email              string
	PaymentAccountID   string
	CompletedSales     int
	CompletedPurchases int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EmailRegex is the pattern for validating emails
var EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates the profile entity
func (p *Profile) Validate() error {
	if p.UserID == "" {
		return ErrUserRequired
	}
	if !p.Kind.Valid() {
		return ErrKindInvalid
	}
	if p.Name == "" {
		return ErrNameRequired
	}
	if len(p.Name) < 2 || len(p.Name) > 100 {
		return ErrNameLength
	}
	if p.Email == "" {
		return ErrEmailRequired
	}
	if !EmailRegex.MatchString(p.Email) {
		return ErrEmailInvalid
	}
	return nil
}

// NewProfile creates a new profile with validation
func NewProfile(userID string, kind Kind, name, email string) (*Profile, error) {
	now := time.Now()
	profile := &Profile{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

// CanSell reports whether the profile may receive card payouts
func (p *Profile) CanSell() bool {
	return p.Kind == KindBusiness || p.Kind == KindProvider
}
