// Package ordertest provides in-memory implementations of the order ports for tests.
package ordertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	catalog "go-market/internal/catalog/domain"
	"go-market/internal/orders/domain"
	"go-market/internal/orders/ports"
)

type outboxEntry struct {
	event domain.Event
	sent  bool
}

type data struct {
	orders    map[uuid.UUID]domain.Order
	items     map[uuid.UUID]catalog.Item
	options   map[uuid.UUID]*catalog.ItemOptions
	events    map[uuid.UUID]catalog.DeliveryEvent
	locations map[uuid.UUID]catalog.PickupLocation
	outbox    []outboxEntry
}

func (d *data) clone() *data {
	c := &data{
		orders:    make(map[uuid.UUID]domain.Order, len(d.orders)),
		items:     make(map[uuid.UUID]catalog.Item, len(d.items)),
		options:   make(map[uuid.UUID]*catalog.ItemOptions, len(d.options)),
		events:    make(map[uuid.UUID]catalog.DeliveryEvent, len(d.events)),
		locations: make(map[uuid.UUID]catalog.PickupLocation, len(d.locations)),
		outbox:    append([]outboxEntry(nil), d.outbox...),
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	for k, v := range d.options {
		c.options[k] = v
	}
	for k, v := range d.events {
		c.events[k] = v
	}
	for k, v := range d.locations {
		c.locations[k] = v
	}
	return c
}

// Store is an in-memory ports.Store. WithinTx works on a copy and keeps it only when fn succeeds.
// Stored values are replaced, never mutated, so copies stay isolated.
type Store struct {
	mu   sync.Mutex
	data *data
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{data: &data{
		orders:    map[uuid.UUID]domain.Order{},
		items:     map[uuid.UUID]catalog.Item{},
		options:   map[uuid.UUID]*catalog.ItemOptions{},
		events:    map[uuid.UUID]catalog.DeliveryEvent{},
		locations: map[uuid.UUID]catalog.PickupLocation{},
	}}
}

func (s *Store) Orders() ports.OrderRepository      { return orderRepo{s} }
func (s *Store) Items() ports.ItemRepository        { return itemRepo{s} }
func (s *Store) Options() ports.OptionsRepository   { return optionsRepo{s} }
func (s *Store) Delivery() ports.DeliveryRepository { return deliveryRepo{s} }
func (s *Store) Outbox() ports.Outbox               { return outbox{s} }

// WithinTx runs fn against a private copy of the data
func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{data: s.data.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) read(fn func(d *data)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

// PutItem stores an item
func (s *Store) PutItem(item *catalog.Item) {
	s.read(func(d *data) { d.items[item.ID] = *item })
}

// Item returns the stored item
func (s *Store) Item(id uuid.UUID) catalog.Item {
	var item catalog.Item
	s.read(func(d *data) { item = d.items[id] })
	return item
}

// PutOptions stores the default item options of a seller
func (s *Store) PutOptions(owner uuid.UUID, opts *catalog.ItemOptions) {
	s.read(func(d *data) { d.options[owner] = opts })
}

// PutDeliveryEvent stores a delivery event
func (s *Store) PutDeliveryEvent(e *catalog.DeliveryEvent) {
	s.read(func(d *data) { d.events[e.ID] = *e })
}

// PutPickupLocation stores a pickup location
func (s *Store) PutPickupLocation(l *catalog.PickupLocation) {
	s.read(func(d *data) { d.locations[l.ID] = *l })
}

// PendingEvents returns the keys of unsent outbox events in insertion order
func (s *Store) PendingEvents() []domain.EventKey {
	var keys []domain.EventKey
	s.read(func(d *data) {
		for _, e := range d.outbox {
			if !e.sent {
				keys = append(keys, e.event.EventKey)
			}
		}
	})
	return keys
}

// OrderCount returns how many orders are stored
func (s *Store) OrderCount() int {
	var n int
	s.read(func(d *data) { n = len(d.orders) })
	return n
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	order.Version = 1
	order.CreatedAt = now
	order.UpdatedAt = now
	r.s.read(func(d *data) { d.orders[order.ID] = *order })
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	var (
		o  domain.Order
		ok bool
	)
	r.s.read(func(d *data) { o, ok = d.orders[id] })
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	return &o, nil
}

func (r orderRepo) Update(_ context.Context, order *domain.Order) error {
	var err error
	r.s.read(func(d *data) {
		stored, ok := d.orders[order.ID]
		switch {
		case !ok:
			err = domain.NewOrderNotFound(order.ID)
		case stored.Version != order.Version:
			err = domain.ErrConcurrentUpdate
		default:
			order.Version++
			order.UpdatedAt = time.Now().UTC()
			d.orders[order.ID] = *order
		}
	})
	return err
}

func (r orderRepo) List(_ context.Context, f ports.ListFilter) ([]*domain.Order, int64, error) {
	var matched []*domain.Order
	r.s.read(func(d *data) {
		for _, o := range d.orders {
			o := o
			buyer, seller := o.BuyerProfileID == f.ProfileID, o.SellerProfileID == f.ProfileID
			switch {
			case f.Role == ports.RoleBuyer && !buyer,
				f.Role == ports.RoleSeller && !seller,
				!buyer && !seller:
				continue
			}
			if f.Status != "" && o.Status != f.Status {
				continue
			}
			matched = append(matched, &o)
		}
	})

	sort.Slice(matched, func(i, j int) bool {
		if f.Ascending {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []*domain.Order{}, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

type itemRepo struct{ s *Store }

func (r itemRepo) FetchActiveByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Item, error) {
	var out []*catalog.Item
	r.s.read(func(d *data) {
		for _, id := range ids {
			if item, ok := d.items[id]; ok && item.Active {
				item := item
				out = append(out, &item)
			}
		}
	})
	return out, nil
}

func (r itemRepo) AdjustStock(_ context.Context, id uuid.UUID, deltaInStock, deltaSold int) (*catalog.Item, error) {
	var (
		item catalog.Item
		err  error
	)
	r.s.read(func(d *data) {
		stored, ok := d.items[id]
		if !ok {
			err = catalog.NewItemNotFound(id)
			return
		}
		if (stored.UseInStock && stored.InStock+deltaInStock < 0) || stored.Sold+deltaSold < 0 {
			err = catalog.NewInsufficientStock(id, deltaInStock)
			return
		}
		if stored.UseInStock {
			stored.InStock += deltaInStock
		}
		stored.Sold += deltaSold
		d.items[id] = stored
		item = stored
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type optionsRepo struct{ s *Store }

func (r optionsRepo) Get(_ context.Context, owner uuid.UUID) (*catalog.ItemOptions, error) {
	var opts *catalog.ItemOptions
	r.s.read(func(d *data) { opts = d.options[owner] })
	return opts, nil
}

type deliveryRepo struct{ s *Store }

func (r deliveryRepo) GetEvent(_ context.Context, id uuid.UUID) (*catalog.DeliveryEvent, error) {
	var (
		e  catalog.DeliveryEvent
		ok bool
	)
	r.s.read(func(d *data) { e, ok = d.events[id] })
	if !ok {
		return nil, catalog.NewDeliveryEventNotFound(id)
	}
	return &e, nil
}

func (r deliveryRepo) GetLocation(_ context.Context, id uuid.UUID) (*catalog.PickupLocation, error) {
	var (
		l  catalog.PickupLocation
		ok bool
	)
	r.s.read(func(d *data) { l, ok = d.locations[id] })
	if !ok {
		return nil, catalog.NewPickupLocationNotFound(id)
	}
	return &l, nil
}

type outbox struct{ s *Store }

func (o outbox) Append(_ context.Context, events ...domain.Event) error {
	o.s.read(func(d *data) {
		for _, e := range events {
			d.outbox = append(d.outbox, outboxEntry{event: e})
		}
	})
	return nil
}

func (o outbox) FetchPending(_ context.Context, before time.Time, limit int) ([]domain.Event, error) {
	var out []domain.Event
	o.s.read(func(d *data) {
		for _, e := range d.outbox {
			if len(out) == limit {
				return
			}
			if !e.sent && e.event.CreatedAt.Before(before) {
				out = append(out, e.event)
			}
		}
	})
	return out, nil
}

func (o outbox) MarkSent(_ context.Context, ids ...uuid.UUID) error {
	sent := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		sent[id] = true
	}
	o.s.read(func(d *data) {
		for i := range d.outbox {
			if sent[d.outbox[i].event.ID] {
				d.outbox[i].sent = true
			}
		}
	})
	return nil
}
