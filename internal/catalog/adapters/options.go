package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-market/internal/catalog/domain"
	apperrors "go-market/pkg/errors"
)

// DefaultOptionsModel holds one seller's default item options
type DefaultOptionsModel struct {
	OwnerProfileID uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Options        *domain.ItemOptions `gorm:"type:text;serializer:json;not null"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (DefaultOptionsModel) TableName() string {
	return "default_item_options"
}

// GormOptionsRepository implements OptionsRepository
type GormOptionsRepository struct {
	db *gorm.DB
}

// NewGormOptionsRepository creates a new options repository
func NewGormOptionsRepository(db *gorm.DB) *GormOptionsRepository {
	return &GormOptionsRepository{db: db}
}

// Migrate runs auto-migration for the default options model
func (r *GormOptionsRepository) Migrate() error {
	return r.db.AutoMigrate(&DefaultOptionsModel{})
}

// Put upserts the seller's defaults
func (r *GormOptionsRepository) Put(ctx context.Context, owner uuid.UUID, options *domain.ItemOptions) error {
	model := &DefaultOptionsModel{OwnerProfileID: owner, Options: options}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_profile_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"options", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return apperrors.NewInternal("failed to store default options", err)
	}
	return nil
}

// Get returns the seller's defaults or nil
func (r *GormOptionsRepository) Get(ctx context.Context, owner uuid.UUID) (*domain.ItemOptions, error) {
	var model DefaultOptionsModel

	result := r.db.WithContext(ctx).First(&model, "owner_profile_id = ?", owner)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternal("failed to get default options", result.Error)
	}
	return model.Options, nil
}
