package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentOption is one way a seller accepts money, e.g. "card" or "bank_transfer".
// Details carries what the buyer needs to pay (account number, instructions).
type PaymentOption struct {
	Kind    string            `json:"kind"`
	Details map[string]string `json:"details,omitempty"`
}

// ShippingOption is a labelled shipping method with a flat price
type ShippingOption struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// ItemOptions is the selling policy of an item or the default policy of a seller
type ItemOptions struct {
	AcceptedPaymentOptions []PaymentOption  `json:"accepted_payment_options"`
	ShippingOptions        []ShippingOption `json:"shipping_options,omitempty"`
	RequireAccept          bool             `json:"require_accept"`
	BaseCurrency           string           `json:"base_currency"`
	HomeDeliveryPrice      *decimal.Decimal `json:"home_delivery_price,omitempty"`
}

// Validate validates the options
func (o *ItemOptions) Validate() error {
	if len(o.BaseCurrency) != 3 {
		return ErrInvalidCurrency
	}
	if len(o.AcceptedPaymentOptions) == 0 {
		return ErrNoPaymentOptions
	}
	for _, p := range o.AcceptedPaymentOptions {
		if strings.TrimSpace(p.Kind) == "" {
			return ErrNoPaymentOptions
		}
	}
	for _, s := range o.ShippingOptions {
		if s.Label == "" || s.Price.IsNegative() {
			return ErrInvalidShipping
		}
	}
	if o.HomeDeliveryPrice != nil && o.HomeDeliveryPrice.IsNegative() {
		return ErrInvalidShipping
	}
	return nil
}

// Currency returns the base currency normalised to upper case
func (o *ItemOptions) Currency() string {
	return strings.ToUpper(o.BaseCurrency)
}

// PaymentOption finds the accepted option of the given kind
func (o *ItemOptions) PaymentOption(kind string) (PaymentOption, bool) {
	for _, p := range o.AcceptedPaymentOptions {
		if p.Kind == kind {
			return p, true
		}
	}
	return PaymentOption{}, false
}

// SupportsShipping reports whether label is one of the shipping options
func (o *ItemOptions) SupportsShipping(label string) bool {
	for _, s := range o.ShippingOptions {
		if s.Label == label {
			return true
		}
	}
	return false
}

// OffersHomeDelivery reports whether a home delivery price is configured
func (o *ItemOptions) OffersHomeDelivery() bool {
	return o.HomeDeliveryPrice != nil
}
