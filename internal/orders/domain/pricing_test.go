package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "go-market/internal/catalog/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPrepItems_LastQuantityWins(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, qty := PrepItems([]RequestedItem{
		{ItemID: a, Quantity: 1},
		{ItemID: b, Quantity: 2},
		{ItemID: a, Quantity: 7},
	})

	assert.Equal(t, []uuid.UUID{a, b}, ids)
	assert.Equal(t, map[uuid.UUID]int{a: 7, b: 2}, qty)
}

func TestDetermineStatus(t *testing.T) {
	plain := &catalog.ItemOptions{}
	strict := &catalog.ItemOptions{RequireAccept: true}

	assert.Equal(t, StatusAccepted, DetermineStatus(plain))
	assert.Equal(t, StatusPending, DetermineStatus(strict))
	assert.Equal(t, StatusPending, DetermineStatus(plain, strict))
	assert.Equal(t, StatusAccepted, DetermineStatus(nil))
}

func TestCalcBracketPrice(t *testing.T) {
	item := &catalog.Item{
		Price: d("10"),
		DiscountBrackets: []catalog.DiscountBracket{
			{MinimumQuantity: 10, Price: d("8")},
			{MinimumQuantity: 5, Price: d("9")},
			{MinimumQuantity: 20, Price: d("8.5")},
		},
	}

	cases := map[int]string{
		1:  "10",
		4:  "10",
		5:  "9",
		9:  "9",
		10: "8",
		19: "8",
		20: "8.5",
		99: "8.5",
	}
	for qty, want := range cases {
		assert.True(t, d(want).Equal(CalcBracketPrice(item, qty)), "quantity %d", qty)
	}

	assert.True(t, d("10").Equal(CalcBracketPrice(&catalog.Item{Price: d("10")}, 3)))
}

func TestCalcItemsPriceTotal(t *testing.T) {
	a := &catalog.Item{ID: uuid.New(), Price: d("100")}
	b := &catalog.Item{ID: uuid.New(), Price: d("3"), DiscountBrackets: []catalog.DiscountBracket{{MinimumQuantity: 10, Price: d("2.5")}}}

	total, err := CalcItemsPriceTotal([]*catalog.Item{a, b}, map[uuid.UUID]int{a.ID: 2, b.ID: 10})
	require.NoError(t, err)
	assert.True(t, d("225").Equal(total), total.String())

	_, err = CalcItemsPriceTotal(nil, nil)
	assert.Equal(t, ErrEmptyOrder, err)
}

func TestCalcOrderShippingCost(t *testing.T) {
	opts := &catalog.ItemOptions{ShippingOptions: []catalog.ShippingOption{
		{Label: "post", Price: d("4.90")},
		{Label: "post", Price: d("99")},
		{Label: "courier", Price: d("12")},
	}}

	assert.True(t, d("4.90").Equal(CalcOrderShippingCost(opts, "post")))
	assert.True(t, d("12").Equal(CalcOrderShippingCost(opts, "courier")))
	assert.True(t, CalcOrderShippingCost(opts, "drone").IsZero())
	assert.True(t, CalcOrderShippingCost(opts, "").IsZero())
	assert.True(t, CalcOrderShippingCost(nil, "post").IsZero())
}

func TestCalcOrderPriceTotal_HomeDeliveryIsFeeExempt(t *testing.T) {
	got := CalcOrderPriceTotal(d("200"), d("0"), d("0"), d("0.05"))
	assert.True(t, d("210").Equal(got.Total), got.Total.String())
	assert.True(t, d("10").Equal(got.TransactionFee))

	got = CalcOrderPriceTotal(d("200"), d("20"), d("15"), d("0.05"))
	// (200 + 20) * 1.05 + 15
	assert.True(t, d("246").Equal(got.Total), got.Total.String())
	assert.True(t, d("11").Equal(got.TransactionFee))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(21000), MinorUnits(d("210"), "USD"))
	assert.Equal(t, int64(1999), MinorUnits(d("19.99"), "EUR"))
	assert.Equal(t, int64(1000), MinorUnits(d("999.5"), "JPY"))
}
