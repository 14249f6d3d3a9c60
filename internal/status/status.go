package status

import "errors"

var (
	ErrEventNotFound  = errors.New("event: event not found")
	ErrOrderNotFound  = errors.New("order: order not found")
	ErrSoldOut        = errors.New("event: no tickets available")
	ErrOrderNotPaid   = errors.New("order: order is not paid")
	ErrPaymentSession = errors.New("payment: failed to create payment session")
	ErrPersistence    = errors.New("store: write failed")
)

// OrderStatus is the lifecycle status of an order.
type OrderStatus string

const (
	Pending OrderStatus = "pending"
	Paid    OrderStatus = "paid"
	Sent    OrderStatus = "sent"
	Failed  OrderStatus = "failed"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsTerminal() bool {
	return s == Sent || s == Failed
}

// allowedSources lists which statuses a target status may be reached from.
// Progress is monotonic: pending < paid < sent, and failed is reachable
// from pending only, so a late "deny" can never knock back a paid order.
var allowedSources = map[OrderStatus][]OrderStatus{
	Paid:   {Pending},
	Sent:   {Paid},
	Failed: {Pending},
}

// AllowedSources returns the statuses a transition to the target is
// permitted from. The slice is used verbatim as the guard set of the
// order store's conditional update.
func AllowedSources(to OrderStatus) []OrderStatus {
	return allowedSources[to]
}

// CanTransition reports whether moving from one status to another is
// permitted by the lifecycle graph.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range allowedSources[to] {
		if s == from {
			return true
		}
	}
	return false
}

// FromTransactionStatus maps a gateway transaction status code to the
// order status it should drive. The second return value is false for
// codes outside the mapped set, which the reconciler acknowledges
// without touching the order.
func FromTransactionStatus(code string) (OrderStatus, bool) {
	switch code {
	case "settlement":
		return Paid, true
	case "deny", "cancel", "expire":
		return Failed, true
	default:
		return "", false
	}
}
