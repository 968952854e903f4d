package order

// Status is the canonical order lifecycle status.
//
//	processing -> shipped -> delivered
//	processing -> cancelled
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists statuses in lifecycle order
var AllStatuses = []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusProcessing:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	case StatusDelivered, StatusCancelled:
		return false
	}
	return false
}

// ParseStatus maps legacy labels used by older clients onto the canonical enum
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "processing", "placed", "processed", "pending":
		return StatusProcessing, true
	case "shipped":
		return StatusShipped, true
	case "delivered":
		return StatusDelivered, true
	case "cancelled", "canceled":
		return StatusCancelled, true
	}
	return "", false
}

// PaymentStatus tracks payment of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks if the payment status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// TimelineLabel is the label of a timeline event. It is the order status,
// except for the creation event which is labelled "placed".
type TimelineLabel string

const (
	TimelinePlaced    TimelineLabel = "placed"
	TimelineShipped   TimelineLabel = TimelineLabel(StatusShipped)
	TimelineDelivered TimelineLabel = TimelineLabel(StatusDelivered)
	TimelineCancelled TimelineLabel = TimelineLabel(StatusCancelled)
	TimelinePaid      TimelineLabel = "payment_received"
	TimelineFailed    TimelineLabel = "payment_failed"
)
