package enums

import (
	"fmt"
	"strings"
)

// DisputeStatus tracks the lifecycle of a dispute on one order item.
type DisputeStatus string

const (
	DisputeStatusPending           DisputeStatus = "PENDING"
	DisputeStatusProcessing        DisputeStatus = "PROCESSING"
	DisputeStatusPendingResolution DisputeStatus = "PENDING_RESOLUTION"
	DisputeStatusResolved          DisputeStatus = "RESOLVED"
)

var validDisputeStatuses = []DisputeStatus{
	DisputeStatusPending,
	DisputeStatusProcessing,
	DisputeStatusPendingResolution,
	DisputeStatusResolved,
}

// String implements fmt.Stringer.
func (d DisputeStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DisputeStatus.
func (d DisputeStatus) IsValid() bool {
	for _, candidate := range validDisputeStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the dispute admits no further transitions.
func (d DisputeStatus) IsTerminal() bool {
	return d == DisputeStatusResolved
}

// ParseDisputeStatus converts raw input into a DisputeStatus.
func ParseDisputeStatus(value string) (DisputeStatus, error) {
	for _, candidate := range validDisputeStatuses {
		if strings.EqualFold(string(candidate), value) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute status %q", value)
}
