package payments

import (
	"encoding/json"
	stderrors "errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"go-market/pkg/errors"
)

const (
	// SignatureHeader carries the webhook signature
	SignatureHeader = "Stripe-Signature"

	// EventPaymentIntentSucceeded is the only event type the order service acts on
	EventPaymentIntentSucceeded stripe.EventType = "payment_intent.succeeded"

	// DefaultTolerance bounds the age of an accepted webhook
	DefaultTolerance = webhook.DefaultTolerance
)

// ConstructEvent verifies the Stripe-Signature header against payload and decodes the event.
// Events rendered with another API version are accepted; only ids and metadata are read from them.
func ConstructEvent(payload []byte, header, secret string) (*stripe.Event, error) {
	if secret == "" {
		return nil, errors.NewUnauthorized("webhook secret not configured")
	}

	event, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		Tolerance:                DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	switch {
	case err == nil:
		return &event, nil
	case stderrors.Is(err, webhook.ErrNotSigned), stderrors.Is(err, webhook.ErrInvalidHeader):
		return nil, errors.NewUnauthorized("missing webhook signature")
	case stderrors.Is(err, webhook.ErrTooOld):
		return nil, errors.NewUnauthorized("webhook timestamp outside tolerance")
	case stderrors.Is(err, webhook.ErrNoValidSignature):
		return nil, errors.NewUnauthorized("invalid webhook signature")
	default:
		return nil, errors.NewValidation("malformed webhook payload", nil)
	}
}

// PaymentIntent decodes data.object of a payment_intent.* event
func PaymentIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	if event.Data == nil {
		return nil, errors.NewValidation("webhook event has no data", nil)
	}
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, errors.NewValidation("malformed payment intent object", nil)
	}
	return &intent, nil
}
