package order

const (
	StatusPlaced           = "Order Placed"
	StatusPaymentSubmitted = "Payment Submitted"
	StatusPaymentVerified  = "Payment Verified"
	StatusCOD              = "Cash on Delivery"
	StatusPacked           = "Packed"
	StatusShipped          = "Shipped"
	StatusOutForDelivery   = "Out for Delivery"
	StatusDelivered        = "Delivered"
	StatusCancelled        = "Cancelled"
)

// Statuses lists every known status in lifecycle order.
var Statuses = []string{
	StatusPlaced, StatusPaymentSubmitted, StatusPaymentVerified, StatusCOD,
	StatusPacked, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled,
}

var transitions = map[string][]string{
	StatusPlaced:           {StatusPaymentSubmitted, StatusCOD, StatusCancelled},
	StatusPaymentSubmitted: {StatusPaymentVerified, StatusPacked, StatusCancelled},
	StatusPaymentVerified:  {StatusPacked, StatusCancelled},
	StatusCOD:              {StatusPacked, StatusCancelled},
	StatusPacked:           {StatusShipped, StatusCancelled},
	StatusShipped:          {StatusOutForDelivery},
	StatusOutForDelivery:   {StatusDelivered},
}

var cancellable = map[string]bool{
	StatusPlaced:           true,
	StatusPaymentSubmitted: true,
	StatusPaymentVerified:  true,
	StatusPacked:           true,
	StatusCOD:              true,
}

// Revenue statuses count toward income.
var revenue = map[string]bool{
	StatusPaymentVerified: true,
	StatusPacked:          true,
	StatusShipped:         true,
	StatusOutForDelivery:  true,
	StatusDelivered:       true,
	StatusCOD:             true,
}

func Known(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether an admin may move an order from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Next lists the statuses reachable from status.
func Next(status string) []string {
	return append([]string(nil), transitions[status]...)
}

func Cancellable(status string) bool { return cancellable[status] }

func CountsAsRevenue(status string) bool { return revenue[status] }

// holdsStock is true while the order still owns its reserved units.
func holdsStock(status string) bool { return status != StatusCancelled }
