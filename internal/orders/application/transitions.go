package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	catalog "go-market/internal/catalog/domain"
	"go-market/internal/orders/domain"
	"go-market/internal/orders/ports"
	"go-market/pkg/errors"
	"go-market/pkg/payments"
)

// actor is who is allowed to drive a transition
type actor int

const (
	bySeller actor = iota
	byBuyer
	byParticipant
	byGateway
)

func (a actor) authorize(o *domain.Order, profile uuid.UUID) error {
	switch a {
	case bySeller:
		return domain.IsSeller(o, profile)
	case byBuyer:
		return domain.IsBuyer(o, profile)
	case byParticipant:
		return domain.CanAccess(o, profile)
	}
	return nil
}

// TransitionInput identifies an order and the profile acting on it
type TransitionInput struct {
	OrderID   uuid.UUID
	ProfileID uuid.UUID
}

// TransitionOutput is the order after the transition
type TransitionOutput struct {
	Order *domain.Order
}

// transition loads the order, checks the actor, applies action and stores the result with its events.
// mutate runs after a successful state change and before the order is saved.
func (uc *OrderUseCase) transition(
	ctx context.Context,
	input TransitionInput,
	who actor,
	action domain.Action,
	mutate func(o *domain.Order) error,
) (*TransitionOutput, error) {
	var (
		order  *domain.Order
		from   domain.Status
		events []domain.Event
	)

	err := uc.store.WithinTx(ctx, func(tx ports.Store) error {
		o, err := tx.Orders().GetByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if err := who.authorize(o, input.ProfileID); err != nil {
			return err
		}

		from = o.Status
		keys, err := o.Apply(action)
		if err != nil {
			return err
		}
		order = o
		if len(keys) == 0 {
			return nil
		}

		if mutate != nil {
			if err := mutate(o); err != nil {
				return err
			}
		}
		if action == domain.ActionCancel {
			if err := releaseStock(ctx, tx, o); err != nil {
				return err
			}
		}

		if err := tx.Orders().Update(ctx, o); err != nil {
			return err
		}
		events = domain.NewEvents(o, keys...)
		return tx.Outbox().Append(ctx, events...)
	})
	if err != nil {
		return nil, err
	}

	if len(events) > 0 {
		uc.dispatch(ctx, events)
		uc.log.WithContext(ctx).Info("order transitioned",
			zap.String("order_id", order.ID.String()),
			zap.String("action", string(action)),
			zap.String("from", string(from)),
			zap.String("to", string(order.Status)),
		)
	}

	return &TransitionOutput{Order: order}, nil
}

// AcceptOrderInput represents the seller accepting a pending order
type AcceptOrderInput struct {
	OrderID               uuid.UUID
	SellerProfileID       uuid.UUID
	PaymentDetails        map[string]string
	EstimatedDeliveryDate string
}

// AcceptOrder moves a pending order to ACCEPTED and attaches the payment details the buyer pays with
func (uc *OrderUseCase) AcceptOrder(ctx context.Context, input AcceptOrderInput) (*TransitionOutput, error) {
	var eta *time.Time
	if input.EstimatedDeliveryDate != "" {
		t, err := domain.ParseDeliveryDate(input.EstimatedDeliveryDate)
		if err != nil {
			return nil, err
		}
		eta = &t
	}

	return uc.transition(ctx,
		TransitionInput{OrderID: input.OrderID, ProfileID: input.SellerProfileID},
		bySeller, domain.ActionAccept,
		func(o *domain.Order) error {
			if len(input.PaymentDetails) > 0 {
				o.PaymentDetails = &catalog.PaymentOption{Kind: o.PaymentOptionSelected, Details: input.PaymentDetails}
			} else {
				o.PaymentDetails = o.DefaultPaymentDetails()
			}
			if eta != nil {
				o.EstimatedDeliveryDate = eta
			}
			return nil
		},
	)
}

// RejectOrder finalizes a pending order as REJECTED. Stock stays reserved.
func (uc *OrderUseCase) RejectOrder(ctx context.Context, input TransitionInput) (*TransitionOutput, error) {
	return uc.transition(ctx, input, bySeller, domain.ActionReject, nil)
}

// CancelOrder finalizes the order as CANCELLED and returns its quantities to stock
func (uc *OrderUseCase) CancelOrder(ctx context.Context, input TransitionInput) (*TransitionOutput, error) {
	return uc.transition(ctx, input, byParticipant, domain.ActionCancel, nil)
}

// SellerDeliveryConfirmed records that the seller handed the goods over
func (uc *OrderUseCase) SellerDeliveryConfirmed(ctx context.Context, input TransitionInput) (*TransitionOutput, error) {
	return uc.transition(ctx, input, bySeller, domain.ActionSellerDelivery, nil)
}

// BuyerDeliveryConfirmed records that the buyer received the goods; completes a paid order
func (uc *OrderUseCase) BuyerDeliveryConfirmed(ctx context.Context, input TransitionInput) (*TransitionOutput, error) {
	return uc.transition(ctx, input, byBuyer, domain.ActionBuyerDelivery, nil)
}

// SellerPaymentConfirmed records that the seller received the money and marks the order paid
func (uc *OrderUseCase) SellerPaymentConfirmed(ctx context.Context, input TransitionInput) (*TransitionOutput, error) {
	return uc.transition(ctx, input, bySeller, domain.ActionSellerPayment, nil)
}

// BuyerPaymentConfirmed records that the buyer says they paid
func (uc *OrderUseCase) BuyerPaymentConfirmed(ctx context.Context, input TransitionInput) (*TransitionOutput, error) {
	return uc.transition(ctx, input, byBuyer, domain.ActionBuyerPayment, nil)
}

// UpdateDeliveryDateInput represents the seller moving the estimated delivery date
type UpdateDeliveryDateInput struct {
	OrderID               uuid.UUID
	SellerProfileID       uuid.UUID
	EstimatedDeliveryDate string
}

// UpdateDeliveryDate changes the estimated delivery date of an active order
func (uc *OrderUseCase) UpdateDeliveryDate(ctx context.Context, input UpdateDeliveryDateInput) (*TransitionOutput, error) {
	eta, err := domain.ParseDeliveryDate(input.EstimatedDeliveryDate)
	if err != nil {
		return nil, err
	}

	return uc.transition(ctx,
		TransitionInput{OrderID: input.OrderID, ProfileID: input.SellerProfileID},
		bySeller, domain.ActionChangeDeliveryDate,
		func(o *domain.Order) error {
			o.EstimatedDeliveryDate = &eta
			return nil
		},
	)
}

// CheckoutInput represents the buyer starting an online payment
type CheckoutInput struct {
	OrderID        uuid.UUID
	BuyerProfileID uuid.UUID
}

// CheckoutOutput carries what the client needs to complete the payment
type CheckoutOutput struct {
	Order  *domain.Order
	Intent *domain.PaymentIntent
}

// Checkout creates a payment intent for an accepted order. Calling it again returns the stored intent.
func (uc *OrderUseCase) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutOutput, error) {
	order, err := uc.store.Orders().GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := domain.IsBuyer(order, input.BuyerProfileID); err != nil {
		return nil, err
	}
	switch {
	case order.Finalized:
		return nil, domain.ErrFinalized
	case order.Paid:
		return nil, domain.ErrAlreadyPaid
	case order.Status == domain.StatusPending:
		return nil, domain.ErrNotAccepted
	}

	if order.TransactionDataExternal != nil {
		return &CheckoutOutput{Order: order, Intent: order.TransactionDataExternal}, nil
	}
	if uc.payments == nil || uc.profiles == nil {
		return nil, errors.NewUpstream("online payments are not configured", nil)
	}

	seller, err := uc.profiles.GetProfile(ctx, order.SellerProfileID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve seller")
	}
	buyer, err := uc.profiles.GetProfile(ctx, order.BuyerProfileID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve buyer")
	}

	result, err := uc.payments.PerformPaymentIntent(ctx, payments.PaymentIntentParams{
		OrderID:         order.ID.String(),
		AmountMinor:     domain.MinorUnits(order.TotalPrice, order.BaseCurrency),
		FeeMinor:        domain.MinorUnits(order.TransactionFee, order.BaseCurrency),
		Currency:        order.BaseCurrency,
		SellerAccountID: seller.PaymentAccountID,
		BuyerEmail:      buyer.Email,
	})
	if err != nil {
		return nil, err
	}

	order.TransactionDataExternal = &domain.PaymentIntent{
		PaymentIntentID: result.PaymentIntentID,
		ClientSecret:    result.ClientSecret,
		CustomerID:      result.CustomerID,
		EphemeralKey:    result.EphemeralKey,
	}
	order.UpdatedAt = time.Now().UTC()
	if err := uc.store.Orders().Update(ctx, order); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("checkout started",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_intent_id", result.PaymentIntentID),
	)

	return &CheckoutOutput{Order: order, Intent: order.TransactionDataExternal}, nil
}

// ConfirmPaymentInput is a verified payment notification from the gateway
type ConfirmPaymentInput struct {
	OrderID         uuid.UUID
	PaymentIntentID string
}

// ConfirmPayment marks the order paid. A notification for an already paid order changes nothing.
func (uc *OrderUseCase) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*TransitionOutput, error) {
	return uc.transition(ctx,
		TransitionInput{OrderID: input.OrderID},
		byGateway, domain.ActionConfirmPayment,
		func(o *domain.Order) error {
			intent := o.TransactionDataExternal
			if intent == nil {
				o.TransactionDataExternal = &domain.PaymentIntent{PaymentIntentID: input.PaymentIntentID}
				return nil
			}
			if input.PaymentIntentID != "" && intent.PaymentIntentID != input.PaymentIntentID {
				return errors.NewValidation("payment intent does not belong to this order", map[string]string{
					"payment_intent_id": input.PaymentIntentID,
				})
			}
			return nil
		},
	)
}
