package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalog "go-market/internal/catalog/domain"
)

// PrepItems splits a request into item ids in first-seen order and a quantity per id.
// A repeated id keeps the quantity of its last occurrence.
func PrepItems(requested []RequestedItem) ([]uuid.UUID, map[uuid.UUID]int) {
	ids := make([]uuid.UUID, 0, len(requested))
	quantities := make(map[uuid.UUID]int, len(requested))

	for _, r := range requested {
		if _, seen := quantities[r.ItemID]; !seen {
			ids = append(ids, r.ItemID)
		}
		quantities[r.ItemID] = r.Quantity
	}
	return ids, quantities
}

// DetermineStatus is PENDING when any of the options requires the seller to accept, else ACCEPTED
func DetermineStatus(options ...*catalog.ItemOptions) Status {
	for _, o := range options {
		if o != nil && o.RequireAccept {
			return StatusPending
		}
	}
	return StatusAccepted
}

// CalcBracketPrice returns the unit price of the qualifying bracket with the largest minimum
// quantity, or the base price when no bracket qualifies.
func CalcBracketPrice(item *catalog.Item, quantity int) decimal.Decimal {
	price := item.Price
	best := 0

	for _, b := range item.DiscountBrackets {
		if b.MinimumQuantity <= quantity && b.MinimumQuantity > best {
			best = b.MinimumQuantity
			price = b.Price
		}
	}
	return price
}

// CalcItemsPriceTotal sums bracket price times quantity over items
func CalcItemsPriceTotal(items []*catalog.Item, quantities map[uuid.UUID]int) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, ErrEmptyOrder
	}

	total := decimal.Zero
	for _, item := range items {
		qty := quantities[item.ID]
		total = total.Add(CalcBracketPrice(item, qty).Mul(decimal.NewFromInt(int64(qty))))
	}
	return total, nil
}

// CalcOrderShippingCost is the price of the first shipping option with label, zero if none matches
func CalcOrderShippingCost(options *catalog.ItemOptions, label string) decimal.Decimal {
	if options == nil || label == "" {
		return decimal.Zero
	}
	for _, s := range options.ShippingOptions {
		if s.Label == label {
			return s.Price
		}
	}
	return decimal.Zero
}

// CalcHomeDeliveryPrice is the configured surcharge when home delivery was requested
func CalcHomeDeliveryPrice(options *catalog.ItemOptions, requested bool) decimal.Decimal {
	if !requested || options == nil || options.HomeDeliveryPrice == nil {
		return decimal.Zero
	}
	return *options.HomeDeliveryPrice
}

// PriceBreakdown is the result of CalcOrderPriceTotal
type PriceBreakdown struct {
	TransactionFee decimal.Decimal
	Total          decimal.Decimal
}

// CalcOrderPriceTotal applies the fee to items and shipping only; home delivery is fee-exempt:
// total = (items + shipping) * (1 + feeRate) + homeDelivery
func CalcOrderPriceTotal(itemsTotal, shipping, homeDelivery, feeRate decimal.Decimal) PriceBreakdown {
	subtotal := itemsTotal.Add(shipping)
	fee := subtotal.Mul(feeRate)
	return PriceBreakdown{
		TransactionFee: fee,
		Total:          subtotal.Add(homeDelivery).Add(fee),
	}
}

// zeroDecimalCurrencies have no minor unit
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true, "KRW": true,
	"MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true, "VUV": true, "XAF": true,
	"XOF": true, "XPF": true,
}

// MinorUnits converts an amount to the gateway's integer representation, rounding half away from zero
func MinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimalCurrencies[currency] {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}
