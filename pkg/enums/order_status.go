package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks the post-payment lifecycle of an order item. The remote
// order service is authoritative; these values mirror its wire format.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusPendingDelivery OrderStatus = "PENDING_DELIVERY"
	OrderStatusShipped         OrderStatus = "SHIPPED"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusDisputed        OrderStatus = "DISPUTED"
	OrderStatusReturned        OrderStatus = "RETURNED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPendingDelivery,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusDisputed,
	OrderStatusReturned,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further buyer-visible transitions.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusReturned
}

// Label renders the buyer-facing status text. Statuses the client does not
// recognize render as "Paid" rather than failing.
func (o OrderStatus) Label() string {
	switch o {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusPendingDelivery:
		return "Pending Delivery"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusDisputed:
		return "Disputed"
	case OrderStatusReturned:
		return "Returned"
	default:
		return "Paid"
	}
}

// ParseOrderStatus converts raw input into an OrderStatus. Matching is
// case-insensitive because upstream actors are inconsistent about casing.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if strings.EqualFold(string(candidate), value) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
