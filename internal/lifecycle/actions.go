package lifecycle

import (
	"github.com/sokoplace/sokoplace-backend/pkg/enums"
)

// AllowedOrderActions returns the buyer actions available for an order item in
// the given status. The status is matched case-insensitively and unknown
// statuses yield no actions, so the function is total over arbitrary input.
func AllowedOrderActions(status string) []enums.BuyerAction {
	parsed, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil
	}
	switch parsed {
	case enums.OrderStatusShipped:
		return []enums.BuyerAction{
			enums.BuyerActionRateProduct,
			enums.BuyerActionDeclineAndDispute,
		}
	case enums.OrderStatusDelivered:
		return []enums.BuyerAction{
			enums.BuyerActionDispute,
			enums.BuyerActionRateProduct,
		}
	case enums.OrderStatusDisputed:
		return []enums.BuyerAction{
			enums.BuyerActionReturnItem,
		}
	default:
		return nil
	}
}

// AllowedDisputeActions returns the buyer actions available for a dispute in
// the given status. Every dispute can be viewed; statuses outside the table,
// including unknown ones, yield only the view action.
func AllowedDisputeActions(status string) []enums.BuyerAction {
	parsed, err := enums.ParseDisputeStatus(status)
	if err != nil {
		return []enums.BuyerAction{enums.BuyerActionViewDispute}
	}
	switch parsed {
	case enums.DisputeStatusPending:
		return []enums.BuyerAction{
			enums.BuyerActionReturnItem,
			enums.BuyerActionViewDispute,
		}
	case enums.DisputeStatusPendingResolution:
		return []enums.BuyerAction{
			enums.BuyerActionViewDispute,
			enums.BuyerActionAcceptResolution,
		}
	default:
		return []enums.BuyerAction{enums.BuyerActionViewDispute}
	}
}

// ReturnEligible reports whether a return may be initiated for an order item.
// A return is allowed while the order is shipped, delivered or disputed, or
// while an associated dispute is still pending.
func ReturnEligible(orderStatus string, disputeStatus string) bool {
	if parsed, err := enums.ParseOrderStatus(orderStatus); err == nil {
		switch parsed {
		case enums.OrderStatusShipped, enums.OrderStatusDelivered, enums.OrderStatusDisputed:
			return true
		}
	}
	if parsed, err := enums.ParseDisputeStatus(disputeStatus); err == nil {
		return parsed == enums.DisputeStatusPending
	}
	return false
}
