package enums

import "fmt"

// BuyerAction is a control the order or dispute view may offer on an item.
type BuyerAction string

const (
	BuyerActionRateProduct       BuyerAction = "rate_product"
	BuyerActionDeclineAndDispute BuyerAction = "decline_and_dispute"
	BuyerActionDispute           BuyerAction = "dispute"
	BuyerActionReturnItem        BuyerAction = "return_item"
	BuyerActionViewDispute       BuyerAction = "view_dispute"
	BuyerActionAcceptResolution  BuyerAction = "accept_resolution"
)

var validBuyerActions = []BuyerAction{
	BuyerActionRateProduct,
	BuyerActionDeclineAndDispute,
	BuyerActionDispute,
	BuyerActionReturnItem,
	BuyerActionViewDispute,
	BuyerActionAcceptResolution,
}

// String implements fmt.Stringer.
func (b BuyerAction) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BuyerAction.
func (b BuyerAction) IsValid() bool {
	for _, candidate := range validBuyerActions {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBuyerAction converts raw input into a BuyerAction.
func ParseBuyerAction(value string) (BuyerAction, error) {
	for _, candidate := range validBuyerActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid buyer action %q", value)
}
