package domain

import "fmt"

// OrderStatus is a closed enum. Orders only ever move forward along the
// lifecycle sequence; delivered, cancelled and rejected are terminal.
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "placed"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusInProgress     OrderStatus = "in_progress"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusRejected       OrderStatus = "rejected"
)

// sequence indexes the happy path. A move between sequenced states is legal
// iff it goes forward; skipping intermediate steps is allowed (a chef may mark
// a confirmed order delivered directly), going back or staying put is not.
var sequence = map[OrderStatus]int{
	StatusPlaced:         0,
	StatusConfirmed:      1,
	StatusInProgress:     2,
	StatusReady:          3,
	StatusOutForDelivery: 4,
	StatusDelivered:      5,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", Validationf("unknown order status %q", s)
	}
	return st, nil
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPlaced, StatusConfirmed, StatusInProgress, StatusReady,
		StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of s. Same-state
// and backward moves are never legal; cancelled and rejected are reachable
// only from the early states.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	si, inSeq := sequence[s]
	if ni, ok := sequence[next]; ok {
		return inSeq && ni > si
	}
	switch next {
	case StatusCancelled:
		return s == StatusPlaced || s == StatusConfirmed
	case StatusRejected:
		return s == StatusPlaced
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// statusMessages is the client-facing message table, used verbatim for
// status-update notifications. The confirmed entry interpolates the chef's
// display name.
var statusMessages = map[OrderStatus]string{
	StatusConfirmed:      "Your order has been confirmed by %s!",
	StatusInProgress:     "Your order is being prepared in the kitchen.",
	StatusReady:          "Your order is ready for pickup/delivery!",
	StatusOutForDelivery: "Your order is on the way!",
	StatusDelivered:      "Your order has been delivered. Enjoy your meal!",
	StatusCancelled:      "Your order has been cancelled.",
	StatusRejected:       "Sorry, your order was rejected by the chef.",
}

// StatusMessage returns the human-readable notification text for a status
// change, falling back to a generic message for statuses without an entry.
func StatusMessage(s OrderStatus, chefName string) string {
	msg, ok := statusMessages[s]
	if !ok {
		return fmt.Sprintf("Order status updated to %s", s)
	}
	if s == StatusConfirmed {
		return fmt.Sprintf(msg, chefName)
	}
	return msg
}
