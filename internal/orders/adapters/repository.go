package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	catalog "go-market/internal/catalog/domain"
	"go-market/internal/orders/domain"
	"go-market/internal/orders/ports"
	apperrors "go-market/pkg/errors"
)

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey"`
	BuyerProfileID  uuid.UUID         `gorm:"type:uuid;index;not null"`
	SellerProfileID uuid.UUID         `gorm:"type:uuid;index;not null"`
	Items           []domain.LineItem `gorm:"type:text;serializer:json;not null"`

	ItemsPriceTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ShippingPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	HomeDeliveryPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TransactionFee    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalPrice        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	BaseCurrency      string          `gorm:"size:3;not null"`

	ShippingSelected      string                 `gorm:"size:100"`
	HomeDelivery          bool                   `gorm:"not null;default:false"`
	PaymentOptionSelected string                 `gorm:"size:50;not null"`
	PaymentDetails        *catalog.PaymentOption `gorm:"type:text;serializer:json"`

	Status                  domain.Status `gorm:"size:20;index;not null"`
	RequireAccept           bool          `gorm:"not null;default:false"`
	Paid                    bool          `gorm:"not null;default:false"`
	Finalized               bool          `gorm:"not null;default:false"`
	SellerConfirmedDelivery bool          `gorm:"not null;default:false"`
	BuyerConfirmedDelivery  bool          `gorm:"not null;default:false"`
	SellerConfirmedPayment  bool          `gorm:"not null;default:false"`
	BuyerConfirmedPayment   bool          `gorm:"not null;default:false"`

	HasReview               bool `gorm:"not null;default:false"`
	IsEscrow                bool `gorm:"not null;default:false"`
	EstimatedDeliveryDate   *time.Time
	TransactionDataExternal *domain.PaymentIntent `gorm:"type:text;serializer:json"`
	DeliveryEventID         *uuid.UUID            `gorm:"type:uuid"`
	PickupLocationID        *uuid.UUID            `gorm:"type:uuid"`

	Version   int            `gorm:"not null;default:1"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// GormOrderRepository implements OrderRepository on any GORM dialect
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Migrate runs auto-migration for the order model
func (r *GormOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{})
}

// Create creates a new order
func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	order.Version = 1
	model := toModel(order)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.NewInternal("failed to create order", err)
	}

	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves an order by ID
func (r *GormOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return toDomain(&model), nil
}

// Update writes every mutable column when the stored version still matches the order's
func (r *GormOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	model := toModel(order)
	model.Version = order.Version + 1

	result := r.db.WithContext(ctx).
		Model(model).
		Where("version = ?", order.Version).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update order", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, order.ID); err != nil {
			return err
		}
		return domain.ErrConcurrentUpdate
	}

	order.Version = model.Version
	order.UpdatedAt = model.UpdatedAt
	return nil
}

// SoftDelete hides an order from every read. The row and its outbox events stay.
func (r *GormOrderRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return apperrors.NewInternal("failed to delete order", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewOrderNotFound(id)
	}
	return nil
}

// List returns one page of orders the profile takes part in
func (r *GormOrderRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		switch filter.Role {
		case ports.RoleBuyer:
			db = db.Where("buyer_profile_id = ?", filter.ProfileID)
		case ports.RoleSeller:
			db = db.Where("seller_profile_id = ?", filter.ProfileID)
		default:
			db = db.Where("buyer_profile_id = ? OR seller_profile_id = ?", filter.ProfileID, filter.ProfileID)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInternal("failed to count orders", err)
	}

	order := "created_at DESC"
	if filter.Ascending {
		order = "created_at ASC"
	}

	var models []OrderModel
	result := r.db.WithContext(ctx).
		Scopes(scope).
		Order(order).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&models)
	if result.Error != nil {
		return nil, 0, apperrors.NewInternal("failed to list orders", result.Error)
	}

	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toDomain(&models[i]))
	}
	return orders, total, nil
}

// toModel converts a domain entity to a GORM model
func toModel(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:                      o.ID,
		BuyerProfileID:          o.BuyerProfileID,
		SellerProfileID:         o.SellerProfileID,
		Items:                   o.Items,
		ItemsPriceTotal:         o.ItemsPriceTotal,
		ShippingPrice:           o.ShippingPrice,
		HomeDeliveryPrice:       o.HomeDeliveryPrice,
		TransactionFee:          o.TransactionFee,
		TotalPrice:              o.TotalPrice,
		BaseCurrency:            o.BaseCurrency,
		ShippingSelected:        o.ShippingSelected,
		HomeDelivery:            o.HomeDelivery,
		PaymentOptionSelected:   o.PaymentOptionSelected,
		PaymentDetails:          o.PaymentDetails,
		Status:                  o.Status,
		RequireAccept:           o.RequireAccept,
		Paid:                    o.Paid,
		Finalized:               o.Finalized,
		SellerConfirmedDelivery: o.SellerConfirmedDelivery,
		BuyerConfirmedDelivery:  o.BuyerConfirmedDelivery,
		SellerConfirmedPayment:  o.SellerConfirmedPayment,
		BuyerConfirmedPayment:   o.BuyerConfirmedPayment,
		HasReview:               o.HasReview,
		IsEscrow:                o.IsEscrow,
		EstimatedDeliveryDate:   o.EstimatedDeliveryDate,
		TransactionDataExternal: o.TransactionDataExternal,
		DeliveryEventID:         o.DeliveryEventID,
		PickupLocationID:        o.PickupLocationID,
		Version:                 o.Version,
		CreatedAt:               o.CreatedAt,
		UpdatedAt:               o.UpdatedAt,
	}
}

// toDomain converts a GORM model to a domain entity
func toDomain(m *OrderModel) *domain.Order {
	return &domain.Order{
		ID:                    m.ID,
		BuyerProfileID:        m.BuyerProfileID,
		SellerProfileID:       m.SellerProfileID,
		Items:                 m.Items,
		ItemsPriceTotal:       m.ItemsPriceTotal,
		ShippingPrice:         m.ShippingPrice,
		HomeDeliveryPrice:     m.HomeDeliveryPrice,
		TransactionFee:        m.TransactionFee,
		TotalPrice:            m.TotalPrice,
		BaseCurrency:          m.BaseCurrency,
		ShippingSelected:      m.ShippingSelected,
		HomeDelivery:          m.HomeDelivery,
		PaymentOptionSelected: m.PaymentOptionSelected,
		PaymentDetails:        m.PaymentDetails,
		State: domain.State{
			Status:                  m.Status,
			RequireAccept:           m.RequireAccept,
			Paid:                    m.Paid,
			Finalized:               m.Finalized,
			SellerConfirmedDelivery: m.SellerConfirmedDelivery,
			BuyerConfirmedDelivery:  m.BuyerConfirmedDelivery,
			SellerConfirmedPayment:  m.SellerConfirmedPayment,
			BuyerConfirmedPayment:   m.BuyerConfirmedPayment,
		},
		HasReview:               m.HasReview,
		IsEscrow:                m.IsEscrow,
		EstimatedDeliveryDate:   m.EstimatedDeliveryDate,
		TransactionDataExternal: m.TransactionDataExternal,
		DeliveryEventID:         m.DeliveryEventID,
		PickupLocationID:        m.PickupLocationID,
		Version:                 m.Version,
		Deleted:                 m.DeletedAt.Valid,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}
