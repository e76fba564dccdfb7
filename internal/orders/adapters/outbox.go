package adapters

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-market/internal/orders/domain"
	apperrors "go-market/pkg/errors"
)

// OutboxModel is one order event waiting to be published
type OutboxModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	EventKey  domain.EventKey `gorm:"size:50;not null"`
	Payload   domain.Event    `gorm:"type:text;serializer:json;not null"`
	CreatedAt time.Time       `gorm:"index;not null"`
	SentAt    *time.Time      `gorm:"index"`
}

// TableName returns the table name for GORM
func (OutboxModel) TableName() string {
	return "order_outbox"
}

// GormOutbox implements Outbox on any GORM dialect
type GormOutbox struct {
	db *gorm.DB
}

// NewGormOutbox creates a new outbox
func NewGormOutbox(db *gorm.DB) *GormOutbox {
	return &GormOutbox{db: db}
}

// Migrate runs auto-migration for the outbox model
func (o *GormOutbox) Migrate() error {
	return o.db.AutoMigrate(&OutboxModel{})
}

// Append stores events as unsent
func (o *GormOutbox) Append(ctx context.Context, events ...domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	models := make([]OutboxModel, 0, len(events))
	for _, e := range events {
		models = append(models, OutboxModel{
			ID:        e.ID,
			OrderID:   e.DataObjectID,
			EventKey:  e.EventKey,
			Payload:   e,
			CreatedAt: e.CreatedAt,
		})
	}

	if err := o.db.WithContext(ctx).Create(&models).Error; err != nil {
		return apperrors.NewInternal("failed to store order events", err)
	}
	return nil
}

// FetchPending returns unsent events created before the cutoff, oldest first
func (o *GormOutbox) FetchPending(ctx context.Context, before time.Time, limit int) ([]domain.Event, error) {
	var models []OutboxModel

	result := o.db.WithContext(ctx).
		Where("sent_at IS NULL AND created_at < ?", before).
		Order("created_at ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to fetch pending order events", result.Error)
	}

	events := make([]domain.Event, 0, len(models))
	for _, m := range models {
		events = append(events, m.Payload)
	}
	return events, nil
}

// MarkSent flags events as published
func (o *GormOutbox) MarkSent(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	result := o.db.WithContext(ctx).
		Model(&OutboxModel{}).
		Where("id IN ?", ids).
		Update("sent_at", time.Now().UTC())
	if result.Error != nil {
		return apperrors.NewInternal("failed to mark order events sent", result.Error)
	}
	return nil
}
