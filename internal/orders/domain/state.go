package domain

import "fmt"

// Status is the lifecycle position of an order
type Status string

// Order statuses
const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusDelivered Status = "DELIVERED"
	StatusPaid      Status = "PAID"
	StatusCompleted Status = "COMPLETED"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled,
		StatusDelivered, StatusPaid, StatusCompleted:
		return true
	}
	return false
}

// Action is something a participant or the payment gateway does to an order
type Action string

// Order actions
const (
	ActionAccept             Action = "accept"
	ActionReject             Action = "reject"
	ActionCancel             Action = "cancel"
	ActionSellerDelivery     Action = "confirm seller delivery of"
	ActionBuyerDelivery      Action = "confirm buyer delivery of"
	ActionSellerPayment      Action = "confirm seller payment of"
	ActionBuyerPayment       Action = "confirm buyer payment of"
	ActionChangeDeliveryDate Action = "change the delivery date of"
	ActionConfirmPayment     Action = "confirm gateway payment of"
)

// State groups the status with every flag that must agree with it.
// It only changes through Transition.
type State struct {
	Status                  Status `json:"status"`
	RequireAccept           bool   `json:"require_accept"`
	Paid                    bool   `json:"paid"`
	Finalized               bool   `json:"finalized"`
	SellerConfirmedDelivery bool   `json:"seller_confirmed_delivery"`
	BuyerConfirmedDelivery  bool   `json:"buyer_confirmed_delivery"`
	SellerConfirmedPayment  bool   `json:"seller_confirmed_payment"`
	BuyerConfirmedPayment   bool   `json:"buyer_confirmed_payment"`
}

// InitialState is the state of a freshly created order
func InitialState(requireAccept bool) State {
	if requireAccept {
		return State{Status: StatusPending, RequireAccept: true}
	}
	return State{Status: StatusAccepted}
}

// Transition returns the state after action and the events it emits.
// The input state is never modified; on error it remains the current state.
func Transition(s State, action Action) (State, []EventKey, error) {
	next := s

	switch action {
	case ActionAccept:
		if err := s.requireActive(); err != nil {
			return s, nil, err
		}
		if !s.RequireAccept {
			return s, nil, ErrAcceptNotRequired
		}
		if s.Status != StatusPending {
			return s, nil, ErrNotPending
		}
		next.Status = StatusAccepted
		return next, []EventKey{EventOrderAccept}, nil

	case ActionReject:
		if err := s.requireActive(); err != nil {
			return s, nil, err
		}
		if !s.RequireAccept {
			return s, nil, ErrAcceptNotRequired
		}
		if s.Status != StatusPending {
			return s, nil, ErrNotPending
		}
		next.Status = StatusRejected
		next.Finalized = true
		return next, []EventKey{EventOrderReject}, nil

	case ActionCancel:
		if s.Finalized {
			return s, nil, ErrCannotBeCancelled
		}
		next.Status = StatusCancelled
		next.Finalized = true
		return next, []EventKey{EventOrderCancel}, nil

	case ActionSellerDelivery:
		if err := s.requireAccepted(); err != nil {
			return s, nil, err
		}
		if s.SellerConfirmedDelivery {
			return s, nil, ErrDeliveryAlreadyConfirmed
		}
		next.SellerConfirmedDelivery = true
		next.Status = StatusDelivered
		return next, []EventKey{EventDeliveryConfirmedSeller}, nil

	case ActionBuyerDelivery:
		if err := s.requireAccepted(); err != nil {
			return s, nil, err
		}
		if s.BuyerConfirmedDelivery {
			return s, nil, ErrDeliveryAlreadyConfirmed
		}
		next.BuyerConfirmedDelivery = true
		keys := []EventKey{EventDeliveryConfirmedBuyer}
		if next.Paid {
			next.complete()
			keys = append(keys, EventOrderCompleted)
		}
		return next, keys, nil

	case ActionSellerPayment:
		if err := s.requireAccepted(); err != nil {
			return s, nil, err
		}
		if s.SellerConfirmedPayment {
			return s, nil, ErrPaymentAlreadyConfirmed
		}
		next.SellerConfirmedPayment = true
		return next.markPaid(EventPaymentConfirmedSeller)

	case ActionBuyerPayment:
		if err := s.requireAccepted(); err != nil {
			return s, nil, err
		}
		if s.BuyerConfirmedPayment {
			return s, nil, ErrPaymentAlreadyConfirmed
		}
		// Buyer confirmation alone never marks the order paid
		next.BuyerConfirmedPayment = true
		return next, []EventKey{EventPaymentConfirmedBuyer}, nil

	case ActionChangeDeliveryDate:
		if err := s.requireActive(); err != nil {
			return s, nil, err
		}
		return next, []EventKey{EventDeliveryTimeChanged}, nil

	case ActionConfirmPayment:
		if s.Paid {
			return s, nil, nil
		}
		if err := s.requireActive(); err != nil {
			return s, nil, err
		}
		return next.markPaid(EventOrderPaid)
	}

	return s, nil, NewInvalidTransition(s.Status, action)
}

func (s State) requireActive() error {
	if s.Finalized {
		return ErrFinalized
	}
	return nil
}

func (s State) requireAccepted() error {
	if err := s.requireActive(); err != nil {
		return err
	}
	if s.Status == StatusPending {
		return ErrNotAccepted
	}
	return nil
}

func (s State) markPaid(key EventKey) (State, []EventKey, error) {
	s.Paid = true
	if s.BuyerConfirmedDelivery {
		s.complete()
		return s, []EventKey{key, EventOrderCompleted}, nil
	}
	s.Status = StatusPaid
	return s, []EventKey{key}, nil
}

func (s *State) complete() {
	s.Status = StatusCompleted
	s.Finalized = true
}

// Check reports a state whose flags contradict its status
func (s State) Check() error {
	if !s.Status.Valid() {
		return fmt.Errorf("unknown status %q", s.Status)
	}

	terminal := s.Status == StatusRejected || s.Status == StatusCancelled || s.Status == StatusCompleted
	switch {
	case terminal != s.Finalized:
		return fmt.Errorf("status %s with finalized=%t", s.Status, s.Finalized)
	case s.Status == StatusCompleted && !(s.Paid && s.BuyerConfirmedDelivery):
		return fmt.Errorf("completed order must be paid and delivered to the buyer")
	case s.Status == StatusPaid && !s.Paid:
		return fmt.Errorf("status PAID with paid=false")
	case s.Status == StatusPending && !s.RequireAccept:
		return fmt.Errorf("pending order that does not require acceptance")
	case s.Status == StatusRejected && !s.RequireAccept:
		return fmt.Errorf("rejected order that did not require acceptance")
	}
	return nil
}
