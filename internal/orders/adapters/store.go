package adapters

import (
	"context"

	"gorm.io/gorm"

	catalogadapters "go-market/internal/catalog/adapters"
	"go-market/internal/orders/ports"
	"go-market/pkg/db"
)

// GormStore implements Store over one GORM connection or transaction
type GormStore struct {
	conn     *gorm.DB
	orders   *GormOrderRepository
	items    *catalogadapters.GormItemRepository
	options  *catalogadapters.GormOptionsRepository
	delivery *catalogadapters.GormDeliveryRepository
	outbox   *GormOutbox
}

// NewGormStore creates a store whose repositories all run on conn
func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{
		conn:     conn,
		orders:   NewGormOrderRepository(conn),
		items:    catalogadapters.NewGormItemRepository(conn),
		options:  catalogadapters.NewGormOptionsRepository(conn),
		delivery: catalogadapters.NewGormDeliveryRepository(conn),
		outbox:   NewGormOutbox(conn),
	}
}

// Migrate creates the catalog and order tables
func (s *GormStore) Migrate() error {
	return db.MigrateAll(s.items, s.options, s.delivery, s.orders, s.outbox)
}

func (s *GormStore) Orders() ports.OrderRepository      { return s.orders }
func (s *GormStore) Items() ports.ItemRepository        { return s.items }
func (s *GormStore) Options() ports.OptionsRepository   { return s.options }
func (s *GormStore) Delivery() ports.DeliveryRepository { return s.delivery }
func (s *GormStore) Outbox() ports.Outbox               { return s.outbox }

// WithinTx runs fn on a store bound to one transaction
func (s *GormStore) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	return db.Transaction(ctx, s.conn, func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
