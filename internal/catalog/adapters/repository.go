package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-market/internal/catalog/domain"
	apperrors "go-market/pkg/errors"
)

// ItemModel is the GORM model for items (persistence layer)
type ItemModel struct {
	ID               uuid.UUID                `gorm:"type:uuid;primaryKey"`
	OwnerProfileID   uuid.UUID                `gorm:"type:uuid;index;not null"`
	Name             string                   `gorm:"size:200;not null"`
	Description      string                   `gorm:"type:text"`
	Price            decimal.Decimal          `gorm:"type:numeric(12,2);not null"`
	DiscountBrackets []domain.DiscountBracket `gorm:"type:text;serializer:json"`
	InStock          int                      `gorm:"not null;default:0"`
	Sold             int                      `gorm:"not null;default:0"`
	UseInStock       bool                     `gorm:"not null;default:false"`
	Active           bool                     `gorm:"index;not null;default:true"`
	Options          *domain.ItemOptions      `gorm:"type:text;serializer:json"`
	CreatedAt        time.Time                `gorm:"autoCreateTime"`
	UpdatedAt        time.Time                `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// GormItemRepository implements ItemRepository on any GORM dialect
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new item repository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *GormItemRepository) WithTx(tx *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: tx}
}

// Migrate runs auto-migration for the item model
func (r *GormItemRepository) Migrate() error {
	return r.db.AutoMigrate(&ItemModel{})
}

// Create creates a new item
func (r *GormItemRepository) Create(ctx context.Context, item *domain.Item) error {
	model := toItemModel(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.NewInternal("failed to create item", err)
	}
	item.CreatedAt = model.CreatedAt
	item.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves an item by ID
func (r *GormItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	var model ItemModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewItemNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get item", result.Error)
	}

	return toItemDomain(&model), nil
}

// ListByOwner lists a seller's items, newest first
func (r *GormItemRepository) ListByOwner(ctx context.Context, owner uuid.UUID, activeOnly bool, limit, offset int) ([]*domain.Item, error) {
	var models []ItemModel

	q := r.db.WithContext(ctx).Where("owner_profile_id = ?", owner)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, apperrors.NewInternal("failed to list items", err)
	}

	return toItemDomains(models), nil
}

// FetchActiveByIDs returns the active items among ids
func (r *GormItemRepository) FetchActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []ItemModel
	err := r.db.WithContext(ctx).
		Where("id IN ? AND active = ?", ids, true).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewInternal("failed to fetch items", err)
	}

	return toItemDomains(models), nil
}

// SetActive toggles the active flag
func (r *GormItemRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).Model(&ItemModel{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update item", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewItemNotFound(id)
	}
	return nil
}

// AdjustStock applies both deltas in a single guarded UPDATE so concurrent orders cannot oversell
func (r *GormItemRepository) AdjustStock(ctx context.Context, id uuid.UUID, deltaInStock, deltaSold int) (*domain.Item, error) {
	db := r.db.WithContext(ctx)

	result := db.Model(&ItemModel{}).
		Where("id = ? AND (use_in_stock = ? OR in_stock + ? >= 0) AND sold + ? >= 0", id, false, deltaInStock, deltaSold).
		Updates(map[string]interface{}{
			"in_stock":   gorm.Expr("CASE WHEN use_in_stock THEN in_stock + ? ELSE in_stock END", deltaInStock),
			"sold":       gorm.Expr("sold + ?", deltaSold),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to adjust stock", result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the row is gone or the guard rejected the change
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.NewInsufficientStock(id, deltaInStock)
	}

	return r.GetByID(ctx, id)
}

func toItemModel(item *domain.Item) *ItemModel {
	return &ItemModel{
		ID:               item.ID,
		OwnerProfileID:   item.OwnerProfileID,
		Name:             item.Name,
		Description:      item.Description,
		Price:            item.Price,
		DiscountBrackets: item.DiscountBrackets,
		InStock:          item.InStock,
		Sold:             item.Sold,
		UseInStock:       item.UseInStock,
		Active:           item.Active,
		Options:          item.Options,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

func toItemDomain(model *ItemModel) *domain.Item {
	return &domain.Item{
		ID:               model.ID,
		OwnerProfileID:   model.OwnerProfileID,
		Name:             model.Name,
		Description:      model.Description,
		Price:            model.Price,
		DiscountBrackets: model.DiscountBrackets,
		InStock:          model.InStock,
		Sold:             model.Sold,
		UseInStock:       model.UseInStock,
		Active:           model.Active,
		Options:          model.Options,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func toItemDomains(models []ItemModel) []*domain.Item {
	items := make([]*domain.Item, 0, len(models))
	for i := range models {
		items = append(items, toItemDomain(&models[i]))
	}
	return items
}
