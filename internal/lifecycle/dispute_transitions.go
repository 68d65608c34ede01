package lifecycle

import (
	"fmt"

	"github.com/sokoplace/sokoplace-backend/pkg/enums"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

var disputeTransitions = map[enums.DisputeStatus][]enums.DisputeStatus{
	enums.DisputeStatusPending: {
		enums.DisputeStatusProcessing,
		// An admin may resolve straight from pending, skipping processing.
		enums.DisputeStatusPendingResolution,
	},
	enums.DisputeStatusProcessing: {
		enums.DisputeStatusPendingResolution,
	},
	enums.DisputeStatusPendingResolution: {
		enums.DisputeStatusResolved,
	},
	enums.DisputeStatusResolved: {},
}

// CanTransitionDispute reports whether a dispute may move from one status to another.
func CanTransitionDispute(from, to enums.DisputeStatus) bool {
	allowed, exists := disputeTransitions[from]
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

// ValidateDisputeTransition returns a state-conflict error if the transition is not allowed.
func ValidateDisputeTransition(from, to enums.DisputeStatus) error {
	if !CanTransitionDispute(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("dispute cannot move from %s to %s", from, to)).
			WithDetails(map[string]any{"from": from.String(), "to": to.String()})
	}
	return nil
}
