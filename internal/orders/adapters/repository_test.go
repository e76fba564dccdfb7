package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "go-market/internal/catalog/domain"
	"go-market/internal/orders/domain"
	"go-market/internal/orders/ports"
	"go-market/pkg/db/dbtest"
	apperrors "go-market/pkg/errors"
)

func newStore(t *testing.T) *GormStore {
	t.Helper()
	store := NewGormStore(dbtest.Open(t))
	require.NoError(t, store.Migrate())
	return store
}

func newOrder(buyer, seller uuid.UUID) *domain.Order {
	item := catalog.Item{
		ID:             uuid.New(),
		OwnerProfileID: seller,
		Name:           "Honey jar",
		Price:          decimal.NewFromInt(100),
		Options: &catalog.ItemOptions{
			AcceptedPaymentOptions: []catalog.PaymentOption{{Kind: "card"}},
			BaseCurrency:           "USD",
		},
	}
	return &domain.Order{
		ID:              uuid.New(),
		BuyerProfileID:  buyer,
		SellerProfileID: seller,
		Items: []domain.LineItem{{
			Item:      item,
			Quantity:  2,
			UnitPrice: decimal.NewFromInt(100),
			LineTotal: decimal.NewFromInt(200),
		}},
		ItemsPriceTotal:       decimal.NewFromInt(200),
		ShippingPrice:         decimal.Zero,
		HomeDeliveryPrice:     decimal.Zero,
		TransactionFee:        decimal.NewFromInt(10),
		TotalPrice:            decimal.NewFromInt(210),
		BaseCurrency:          "USD",
		PaymentOptionSelected: "card",
		State:                 domain.InitialState(true),
	}
}

func TestOrderRepository_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	order := newOrder(uuid.New(), uuid.New())

	require.NoError(t, store.Orders().Create(ctx, order))
	assert.Equal(t, 1, order.Version)

	got, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, got.RequireAccept)
	assert.True(t, got.TotalPrice.Equal(decimal.NewFromInt(210)))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Honey jar", got.Items[0].Item.Name)
	require.NotNil(t, got.Items[0].Item.Options)
	assert.Equal(t, "USD", got.Items[0].Item.Options.BaseCurrency)
}

func TestOrderRepository_GetByIDNotFound(t *testing.T) {
	store := newStore(t)

	_, err := store.Orders().GetByID(context.Background(), uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestOrderRepository_UpdateBumpsVersion(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	order := newOrder(uuid.New(), uuid.New())
	require.NoError(t, store.Orders().Create(ctx, order))

	_, err := order.Apply(domain.ActionAccept)
	require.NoError(t, err)
	order.PaymentDetails = &catalog.PaymentOption{Kind: "card", Details: map[string]string{"iban": "DE00"}}
	require.NoError(t, store.Orders().Update(ctx, order))
	assert.Equal(t, 2, order.Version)

	got, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, got.Status)
	assert.Equal(t, 2, got.Version)
	require.NotNil(t, got.PaymentDetails)
	assert.Equal(t, "DE00", got.PaymentDetails.Details["iban"])
}

func TestOrderRepository_UpdateRejectsStaleVersion(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	order := newOrder(uuid.New(), uuid.New())
	require.NoError(t, store.Orders().Create(ctx, order))

	first, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	second, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)

	_, err = first.Apply(domain.ActionAccept)
	require.NoError(t, err)
	require.NoError(t, store.Orders().Update(ctx, first))

	_, err = second.Apply(domain.ActionReject)
	require.NoError(t, err)
	err = store.Orders().Update(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	got, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, got.Status)
}

func TestOrderRepository_List(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	me, other := uuid.New(), uuid.New()

	bought := newOrder(me, other)
	sold := newOrder(other, me)
	unrelated := newOrder(other, uuid.New())
	for _, o := range []*domain.Order{bought, sold, unrelated} {
		require.NoError(t, store.Orders().Create(ctx, o))
	}

	cases := map[string]struct {
		filter ports.ListFilter
		want   []uuid.UUID
	}{
		"any":       {ports.ListFilter{ProfileID: me, Role: ports.RoleAny, Limit: 10}, []uuid.UUID{bought.ID, sold.ID}},
		"buyer":     {ports.ListFilter{ProfileID: me, Role: ports.RoleBuyer, Limit: 10}, []uuid.UUID{bought.ID}},
		"seller":    {ports.ListFilter{ProfileID: me, Role: ports.RoleSeller, Limit: 10}, []uuid.UUID{sold.ID}},
		"no status": {ports.ListFilter{ProfileID: me, Role: ports.RoleAny, Status: domain.StatusPaid, Limit: 10}, nil},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			orders, total, err := store.Orders().List(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.want)), total)

			var ids []uuid.UUID
			for _, o := range orders {
				ids = append(ids, o.ID)
			}
			assert.ElementsMatch(t, tc.want, ids)
		})
	}
}

func TestOrderRepository_SoftDeleteHidesOrder(t *testing.T) {
	store := newStore(t)
	repo := NewGormOrderRepository(store.conn)
	ctx := context.Background()
	me := uuid.New()

	kept := newOrder(me, uuid.New())
	deleted := newOrder(me, uuid.New())
	require.NoError(t, repo.Create(ctx, kept))
	require.NoError(t, repo.Create(ctx, deleted))

	require.NoError(t, repo.SoftDelete(ctx, deleted.ID))

	_, err := repo.GetByID(ctx, deleted.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	orders, total, err := repo.List(ctx, ports.ListFilter{ProfileID: me, Role: ports.RoleAny, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, kept.ID, orders[0].ID)
	assert.False(t, orders[0].Deleted)

	var row OrderModel
	require.NoError(t, store.conn.Unscoped().First(&row, "id = ?", deleted.ID).Error)
	assert.True(t, row.DeletedAt.Valid)
	assert.True(t, toDomain(&row).Deleted)

	err = repo.SoftDelete(ctx, deleted.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestOutbox_PendingAndSent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	order := newOrder(uuid.New(), uuid.New())

	events := domain.NewEvents(order, domain.EventOrderCreate, domain.EventOrderAccept)
	require.NoError(t, store.Outbox().Append(ctx, events...))

	pending, err := store.Outbox().FetchPending(ctx, time.Now().UTC().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, order.ID, pending[0].DataObjectID)
	assert.Equal(t, []uuid.UUID{order.BuyerProfileID, order.SellerProfileID}, pending[0].ParticipantIDs)

	none, err := store.Outbox().FetchPending(ctx, time.Now().UTC().Add(-time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, store.Outbox().MarkSent(ctx, events[0].ID))
	pending, err = store.Outbox().FetchPending(ctx, time.Now().UTC().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, events[1].ID, pending[0].ID)
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	order := newOrder(uuid.New(), uuid.New())
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(tx ports.Store) error {
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, domain.NewEvents(order, domain.EventOrderCreate)...); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Orders().GetByID(ctx, order.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	pending, err := store.Outbox().FetchPending(ctx, time.Now().UTC().Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestToPayload(t *testing.T) {
	order := newOrder(uuid.New(), uuid.New())
	e := domain.NewEvents(order, domain.EventOrderCompleted)[0]

	p := ToPayload(e)

	assert.Equal(t, "ORDER_COMPLETED", p.EventKey)
	assert.Equal(t, "ORDER", p.Kind)
	assert.Equal(t, order.ID.String(), p.DataObjectID)
	assert.Equal(t, order.ID.String(), p.BelongsToID)
	assert.Equal(t, "Order", p.BelongsToKind)
	assert.Equal(t, []string{order.BuyerProfileID.String(), order.SellerProfileID.String()}, p.ParticipantIDs)
}
