package domain

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusRejected  OrderStatus = "REJECTED"
	StatusCompleted OrderStatus = "COMPLETED"
)

var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusCompleted},
}

// CanTransition reports whether from → to is a legal status change.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// TransitionTo moves the order to the requested status, or fails with an
// InvalidStatusTransition error. It mutates only the status field; stock
// restoration and notifications are the orchestrator's job.
func (o *Order) TransitionTo(to OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return NewInvalidTransition(o.Status, to)
	}
	o.Status = to
	return nil
}
