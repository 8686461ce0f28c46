package bill

// Status is the lifecycle state of a bill.
type Status string

// Bill status constants.
const (
	// StatusInWarehouse marks a bill stored in the warehouse and available for sale.
	StatusInWarehouse Status = "IN_WAREHOUSE"
	// StatusPendingPayment marks a sold bill waiting for the customer's payment.
	StatusPendingPayment Status = "PENDING_PAYMENT"
	// StatusPaid marks a bill the customer has paid.
	StatusPaid      Status = "PAID"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusInWarehouse:    {StatusPendingPayment, StatusExpired, StatusCancelled},
	StatusPendingPayment: {StatusPaid, StatusInWarehouse, StatusCancelled},
	StatusPaid:           {StatusCompleted},
	StatusExpired:        {StatusCancelled},
}

// Statuses returns every known status in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusInWarehouse, StatusPendingPayment, StatusPaid,
		StatusCompleted, StatusExpired, StatusCancelled,
	}
}

// IsValid checks if the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusInWarehouse, StatusPendingPayment, StatusPaid,
		StatusCompleted, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// IsAvailable reports whether a bill in this status may be offered for sale.
func (s Status) IsAvailable() bool { return s == StatusInWarehouse }

// IsSold reports whether the bill is part of a sale.
func (s Status) IsSold() bool {
	return s == StatusPendingPayment || s == StatusPaid || s == StatusCompleted
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
