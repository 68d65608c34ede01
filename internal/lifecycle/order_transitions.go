package lifecycle

import (
	"fmt"

	"github.com/sokoplace/sokoplace-backend/pkg/enums"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

// orderTransitions maps a current order status to the statuses it may move to.
// The remote order service is authoritative; this table only restricts which
// actions the client offers and accepts.
var orderTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusPendingDelivery,
	},
	enums.OrderStatusPendingDelivery: {
		enums.OrderStatusShipped,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
		enums.OrderStatusDisputed,
	},
	enums.OrderStatusDelivered: {
		enums.OrderStatusDisputed,
	},
	enums.OrderStatusDisputed: {
		enums.OrderStatusReturned,
	},
	enums.OrderStatusReturned: {},
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to enums.OrderStatus) bool {
	allowed, exists := orderTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateOrderTransition returns a state-conflict error if the transition is not allowed.
func ValidateOrderTransition(from, to enums.OrderStatus) error {
	if !CanTransitionOrder(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot move from %s to %s", from, to)).
			WithDetails(map[string]any{"from": from.String(), "to": to.String()})
	}
	return nil
}
