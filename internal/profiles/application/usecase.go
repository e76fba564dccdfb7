package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-market/internal/profiles/domain"
	"go-market/internal/profiles/ports"
	"go-market/pkg/errors"
	"go-market/pkg/logger"
)

// ProfileUseCase handles profile business logic
type ProfileUseCase struct {
	repo      ports.ProfileRepository
	publisher ports.EventPublisher
	accounts  ports.AccountCreator
	log       *logger.Logger
}

// NewProfileUseCase creates a new profile use case. publisher and accounts may be nil.
func NewProfileUseCase(repo ports.ProfileRepository, publisher ports.EventPublisher, accounts ports.AccountCreator, log *logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		repo:      repo,
		publisher: publisher,
		accounts:  accounts,
		log:       log,
	}
}

// CreateProfileInput represents the input for creating a profile
type CreateProfileInput struct {
	UserID string
	Kind   domain.Kind
	Name   string
	Email  string
}

// CreateProfileOutput represents the output of creating a profile
type CreateProfileOutput struct {
	Profile *domain.Profile
}

// CreateProfile creates a new profile. Selling kinds get a payout account when a gateway is configured.
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, input CreateProfileInput) (*CreateProfileOutput, error) {
	profile, err := domain.NewProfile(input.UserID, input.Kind, input.Name, input.Email)
	if err != nil {
		return nil, err
	}

	if uc.accounts != nil && profile.CanSell() {
		accountID, err := uc.accounts.CreateAccount(ctx, profile.Email)
		if err != nil {
			return nil, err
		}
		profile.PaymentAccountID = accountID
	}

	if err := uc.repo.Create(ctx, profile); err != nil {
		return nil, err
	}

	// Publish event (async, don't fail on error)
	if uc.publisher != nil {
		if err := uc.publisher.PublishProfileCreated(ctx, profile); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish profile created event",
				zap.Error(err),
				zap.String("profile_id", profile.ID.String()),
			)
		}
	}

	uc.log.WithContext(ctx).Info("profile created",
		zap.String("profile_id", profile.ID.String()),
		zap.String("kind", string(profile.Kind)),
	)

	return &CreateProfileOutput{Profile: profile}, nil
}

// GetProfileInput represents the input for getting a profile
type GetProfileInput struct {
	ID uuid.UUID
}

// GetProfileOutput represents the output of getting a profile
type GetProfileOutput struct {
	Profile *domain.Profile
}

// GetProfile retrieves a profile by ID
func (uc *ProfileUseCase) GetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	profile, err := uc.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &GetProfileOutput{Profile: profile}, nil
}

// ListProfiles lists the profiles of a user
func (uc *ProfileUseCase) ListProfiles(ctx context.Context, userID string) ([]*domain.Profile, error) {
	if userID == "" {
		return nil, domain.ErrUserRequired
	}
	return uc.repo.ListByUser(ctx, userID)
}

// VerifyProfileOwner fails unless profileID exists and belongs to userID
func (uc *ProfileUseCase) VerifyProfileOwner(ctx context.Context, userID string, profileID uuid.UUID) error {
	profile, err := uc.repo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return domain.ErrNotOwner
		}
		return err
	}
	if profile.UserID != userID {
		return domain.ErrNotOwner
	}
	return nil
}

// RecordOrderCompletedInput identifies a completed order and its participants
type RecordOrderCompletedInput struct {
	OrderID  uuid.UUID
	BuyerID  uuid.UUID
	SellerID uuid.UUID
}

// RecordOrderCompleted updates the participants' counters. Repeated deliveries of the same order are ignored.
func (uc *ProfileUseCase) RecordOrderCompleted(ctx context.Context, input RecordOrderCompletedInput) error {
	if input.OrderID == uuid.Nil || input.BuyerID == uuid.Nil || input.SellerID == uuid.Nil {
		return errors.NewValidation("order, buyer and seller ids are required", nil)
	}

	recorded, err := uc.repo.RecordOrderCompleted(ctx, input.OrderID, input.BuyerID, input.SellerID)
	if err != nil {
		return err
	}

	if !recorded {
		uc.log.WithContext(ctx).Debug("completed order already recorded",
			zap.String("order_id", input.OrderID.String()),
		)
		return nil
	}

	uc.log.WithContext(ctx).Info("completed order recorded",
		zap.String("order_id", input.OrderID.String()),
		zap.String("buyer_profile_id", input.BuyerID.String()),
		zap.String("seller_profile_id", input.SellerID.String()),
	)
	return nil
}
