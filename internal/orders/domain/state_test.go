package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, s State, actions ...Action) (State, []EventKey) {
	t.Helper()
	var all []EventKey
	for _, a := range actions {
		next, keys, err := Transition(s, a)
		require.NoError(t, err, "action %s from %s", a, s.Status)
		require.NoError(t, next.Check())
		s = next
		all = append(all, keys...)
	}
	return s, all
}

func TestInitialState(t *testing.T) {
	assert.Equal(t, StatusPending, InitialState(true).Status)
	assert.Equal(t, StatusAccepted, InitialState(false).Status)
	assert.NoError(t, InitialState(true).Check())
	assert.NoError(t, InitialState(false).Check())
}

func TestTransition_AcceptAndReject(t *testing.T) {
	s, keys := run(t, InitialState(true), ActionAccept)
	assert.Equal(t, StatusAccepted, s.Status)
	assert.Equal(t, []EventKey{EventOrderAccept}, keys)

	_, _, err := Transition(s, ActionAccept)
	assert.Equal(t, ErrNotPending, err)
	_, _, err = Transition(s, ActionReject)
	assert.Equal(t, ErrNotPending, err)

	_, _, err = Transition(InitialState(false), ActionAccept)
	assert.Equal(t, ErrAcceptNotRequired, err)

	s, _ = run(t, InitialState(true), ActionReject)
	assert.Equal(t, StatusRejected, s.Status)
	assert.True(t, s.Finalized)
}

func TestTransition_PendingBlocksConfirmations(t *testing.T) {
	for _, a := range []Action{ActionSellerDelivery, ActionBuyerDelivery, ActionSellerPayment, ActionBuyerPayment} {
		_, _, err := Transition(InitialState(true), a)
		assert.Equal(t, ErrNotAccepted, err, a)
	}
}

func TestTransition_CancelIsTerminal(t *testing.T) {
	s, keys := run(t, InitialState(false), ActionCancel)
	assert.Equal(t, StatusCancelled, s.Status)
	assert.True(t, s.Finalized)
	assert.Equal(t, []EventKey{EventOrderCancel}, keys)

	_, _, err := Transition(s, ActionCancel)
	assert.Equal(t, ErrCannotBeCancelled, err)

	for _, a := range []Action{ActionAccept, ActionSellerDelivery, ActionBuyerDelivery, ActionSellerPayment, ActionBuyerPayment, ActionChangeDeliveryDate, ActionConfirmPayment} {
		next, _, err := Transition(s, a)
		assert.Error(t, err, a)
		assert.Equal(t, s, next)
	}
}

func TestTransition_SellerDeliveryTwiceFails(t *testing.T) {
	s, _ := run(t, InitialState(false), ActionSellerDelivery)
	assert.Equal(t, StatusDelivered, s.Status)

	next, _, err := Transition(s, ActionSellerDelivery)
	assert.Equal(t, ErrDeliveryAlreadyConfirmed, err)
	assert.Equal(t, s, next)
}

func TestTransition_CompletesInEitherOrder(t *testing.T) {
	s, keys := run(t, InitialState(false), ActionBuyerDelivery, ActionSellerPayment)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.True(t, s.Finalized)
	assert.Equal(t, []EventKey{EventDeliveryConfirmedBuyer, EventPaymentConfirmedSeller, EventOrderCompleted}, keys)

	s, keys = run(t, InitialState(false), ActionSellerPayment, ActionBuyerDelivery)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, []EventKey{EventPaymentConfirmedSeller, EventDeliveryConfirmedBuyer, EventOrderCompleted}, keys)

	s, _ = run(t, InitialState(false), ActionConfirmPayment, ActionSellerDelivery, ActionBuyerDelivery)
	assert.Equal(t, StatusCompleted, s.Status)
}

func TestTransition_PaymentPaths(t *testing.T) {
	s, _ := run(t, InitialState(false), ActionSellerPayment)
	assert.True(t, s.Paid)
	assert.Equal(t, StatusPaid, s.Status)

	s, _ = run(t, InitialState(false), ActionBuyerPayment)
	assert.False(t, s.Paid)
	assert.True(t, s.BuyerConfirmedPayment)
	assert.Equal(t, StatusAccepted, s.Status)

	_, _, err := Transition(s, ActionBuyerPayment)
	assert.Equal(t, ErrPaymentAlreadyConfirmed, err)

	s, keys := run(t, InitialState(false), ActionConfirmPayment)
	assert.Equal(t, []EventKey{EventOrderPaid}, keys)
	again, keys, err := Transition(s, ActionConfirmPayment)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, s, again)
}

func TestTransition_DeliveryDate(t *testing.T) {
	s, keys := run(t, InitialState(true), ActionChangeDeliveryDate)
	assert.Equal(t, StatusPending, s.Status)
	assert.Equal(t, []EventKey{EventDeliveryTimeChanged}, keys)
}

func TestTransition_UnknownAction(t *testing.T) {
	_, _, err := Transition(InitialState(false), Action("teleport"))
	assert.Error(t, err)
}

func TestCheck_RejectsContradictions(t *testing.T) {
	bad := []State{
		{Status: StatusCompleted, Finalized: true, Paid: false, BuyerConfirmedDelivery: true},
		{Status: StatusCancelled},
		{Status: StatusAccepted, Finalized: true},
		{Status: StatusPaid},
		{Status: StatusPending},
		{Status: "LOST"},
	}
	for _, s := range bad {
		assert.Error(t, s.Check(), "%+v", s)
	}
}

func TestParseDeliveryDate(t *testing.T) {
	_, err := ParseDeliveryDate("2026-10-20")
	assert.NoError(t, err)
	_, err = ParseDeliveryDate("2026-10-20T10:00:00+02:00")
	assert.NoError(t, err)
	_, err = ParseDeliveryDate("next tuesday")
	assert.Equal(t, ErrInvalidDeliveryDate, err)
}
