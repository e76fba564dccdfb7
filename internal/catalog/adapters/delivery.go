package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-market/internal/catalog/domain"
	apperrors "go-market/pkg/errors"
)

// DeliveryEventModel is the GORM model for delivery events
type DeliveryEventModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerProfileID uuid.UUID `gorm:"type:uuid;index;not null"`
	Title          string    `gorm:"size:200;not null"`
	StartsAt       time.Time `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (DeliveryEventModel) TableName() string {
	return "delivery_events"
}

// PickupLocationModel is the GORM model for pickup locations
type PickupLocationModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerProfileID uuid.UUID `gorm:"type:uuid;index;not null"`
	Label          string    `gorm:"size:200;not null"`
	Address        string    `gorm:"size:500;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (PickupLocationModel) TableName() string {
	return "pickup_locations"
}

// GormDeliveryRepository implements DeliveryRepository
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new delivery repository
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Migrate runs auto-migration for delivery events and pickup locations
func (r *GormDeliveryRepository) Migrate() error {
	return r.db.AutoMigrate(&DeliveryEventModel{}, &PickupLocationModel{})
}

// CreateEvent creates a delivery event
func (r *GormDeliveryRepository) CreateEvent(ctx context.Context, event *domain.DeliveryEvent) error {
	model := &DeliveryEventModel{
		ID:             event.ID,
		OwnerProfileID: event.OwnerProfileID,
		Title:          event.Title,
		StartsAt:       event.StartsAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.NewInternal("failed to create delivery event", err)
	}
	event.CreatedAt = model.CreatedAt
	return nil
}

// GetEvent retrieves a delivery event by ID
func (r *GormDeliveryRepository) GetEvent(ctx context.Context, id uuid.UUID) (*domain.DeliveryEvent, error) {
	var model DeliveryEventModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewDeliveryEventNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get delivery event", err)
	}
	return eventToDomain(&model), nil
}

// ListEvents lists a seller's delivery events by start time
func (r *GormDeliveryRepository) ListEvents(ctx context.Context, owner uuid.UUID) ([]*domain.DeliveryEvent, error) {
	var models []DeliveryEventModel
	err := r.db.WithContext(ctx).
		Where("owner_profile_id = ?", owner).
		Order("starts_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewInternal("failed to list delivery events", err)
	}

	events := make([]*domain.DeliveryEvent, 0, len(models))
	for i := range models {
		events = append(events, eventToDomain(&models[i]))
	}
	return events, nil
}

// CreateLocation creates a pickup location
func (r *GormDeliveryRepository) CreateLocation(ctx context.Context, location *domain.PickupLocation) error {
	model := &PickupLocationModel{
		ID:             location.ID,
		OwnerProfileID: location.OwnerProfileID,
		Label:          location.Label,
		Address:        location.Address,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.NewInternal("failed to create pickup location", err)
	}
	location.CreatedAt = model.CreatedAt
	return nil
}

// GetLocation retrieves a pickup location by ID
func (r *GormDeliveryRepository) GetLocation(ctx context.Context, id uuid.UUID) (*domain.PickupLocation, error) {
	var model PickupLocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewPickupLocationNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get pickup location", err)
	}
	return locationToDomain(&model), nil
}

// ListLocations lists a seller's pickup locations
func (r *GormDeliveryRepository) ListLocations(ctx context.Context, owner uuid.UUID) ([]*domain.PickupLocation, error) {
	var models []PickupLocationModel
	err := r.db.WithContext(ctx).
		Where("owner_profile_id = ?", owner).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewInternal("failed to list pickup locations", err)
	}

	locations := make([]*domain.PickupLocation, 0, len(models))
	for i := range models {
		locations = append(locations, locationToDomain(&models[i]))
	}
	return locations, nil
}

func eventToDomain(m *DeliveryEventModel) *domain.DeliveryEvent {
	return &domain.DeliveryEvent{
		ID:             m.ID,
		OwnerProfileID: m.OwnerProfileID,
		Title:          m.Title,
		StartsAt:       m.StartsAt,
		CreatedAt:      m.CreatedAt,
	}
}

func locationToDomain(m *PickupLocationModel) *domain.PickupLocation {
	return &domain.PickupLocation{
		ID:             m.ID,
		OwnerProfileID: m.OwnerProfileID,
		Label:          m.Label,
		Address:        m.Address,
		CreatedAt:      m.CreatedAt,
	}
}
