package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-market/internal/profiles/domain"
	"go-market/pkg/db"
	apperrors "go-market/pkg/errors"
)

// ProfileModel is the GORM model for profiles (persistence layer)
type ProfileModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID             string    `gorm:"size:64;index;not null"`
	Kind               string    `gorm:"size:16;not null"`
	Name               string    `gorm:"size:100;not null"`
	Email              string    `gorm:"size:255;not null"`
	PaymentAccountID   string    `gorm:"size:64"`
	CompletedSales     int       `gorm:"not null;default:0"`
	CompletedPurchases int       `gorm:"not null;default:0"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "profiles"
}

// CompletedOrderModel remembers which completed orders were already counted
type CompletedOrderModel struct {
	OrderID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (CompletedOrderModel) TableName() string {
	return "completed_orders"
}

// GormProfileRepository implements ProfileRepository
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new profile repository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// Migrate runs auto-migration for the profile models
func (r *GormProfileRepository) Migrate() error {
	return r.db.AutoMigrate(&ProfileModel{}, &CompletedOrderModel{})
}

// Create creates a new profile
func (r *GormProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	model := toModel(profile)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to create profile", result.Error)
	}

	profile.CreatedAt = model.CreatedAt
	profile.UpdatedAt = model.UpdatedAt

	return nil
}

// GetByID retrieves a profile by ID
func (r *GormProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var model ProfileModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewProfileNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get profile", result.Error)
	}

	return toDomain(&model), nil
}

// ListByUser lists a user's profiles, oldest first
func (r *GormProfileRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Profile, error) {
	var models []ProfileModel

	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list profiles", result.Error)
	}

	profiles := make([]*domain.Profile, 0, len(models))
	for i := range models {
		profiles = append(profiles, toDomain(&models[i]))
	}
	return profiles, nil
}

// RecordOrderCompleted increments both counters in one transaction guarded by the order id
func (r *GormProfileRepository) RecordOrderCompleted(ctx context.Context, orderID, buyerID, sellerID uuid.UUID) (bool, error) {
	recorded := false

	err := db.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&CompletedOrderModel{OrderID: orderID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&ProfileModel{}).Where("id = ?", sellerID).
			Update("completed_sales", gorm.Expr("completed_sales + 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&ProfileModel{}).Where("id = ?", buyerID).
			Update("completed_purchases", gorm.Expr("completed_purchases + 1")).Error; err != nil {
			return err
		}

		recorded = true
		return nil
	})
	if err != nil {
		return false, apperrors.NewInternal("failed to record completed order", err)
	}
	return recorded, nil
}

// toModel converts a domain entity to a GORM model
func toModel(p *domain.Profile) *ProfileModel {
	return &ProfileModel{
		ID:                 p.ID,
		UserID:             p.UserID,
		Kind:               string(p.Kind),
		Name:               p.Name,
		Email:              p.Email,
		PaymentAccountID:   p.PaymentAccountID,
		CompletedSales:     p.CompletedSales,
		CompletedPurchases: p.CompletedPurchases,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// toDomain converts a GORM model to a domain entity
func toDomain(m *ProfileModel) *domain.Profile {
	return &domain.Profile{
		ID:                 m.ID,
		UserID:             m.UserID,
		Kind:               domain.Kind(m.Kind),
		Name:               m.Name,
		Email:              m.Email,
		PaymentAccountID:   m.PaymentAccountID,
		CompletedSales:     m.CompletedSales,
		CompletedPurchases: m.CompletedPurchases,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
