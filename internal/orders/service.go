package orders

import (
	"context"
	"strings"

	"go.uber.org/multierr"

	"github.com/sokoplace/sokoplace-backend/internal/commerce"
	"github.com/sokoplace/sokoplace-backend/internal/lifecycle"
	"github.com/sokoplace/sokoplace-backend/pkg/enums"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

// Directory is the commerce surface the order view reads and writes through.
type Directory interface {
	ListBuyerOrders(ctx context.Context, buyerUserID string) ([]commerce.Order, error)
	GetOrder(ctx context.Context, orderNumber string) (*commerce.Order, error)
	UpdateOrderStatus(ctx context.Context, orderNumber, status string) (*commerce.Order, error)
	DeclineItem(ctx context.Context, itemID string) error
	FileDispute(ctx context.Context, input commerce.FileDisputeInput) (*commerce.Dispute, error)
}

// View is an order decorated with the actions the buyer may take on it. The
// status string passes through as the remote service reports it; unknown
// statuses get a neutral display label rather than an error.
type View struct {
	commerce.Order
	StatusLabel    string             `json:"status_label"`
	AllowedActions []enums.BuyerAction `json:"allowed_actions"`
}

// DisputeStep identifies which half of the decline-and-dispute saga failed.
const (
	StepDecline       = "decline"
	StepDisputeFiling = "dispute_filing"
)

// DeclineAndDisputeResult reports how far the two-step saga got.
type DeclineAndDisputeResult struct {
	Declined bool              `json:"declined"`
	Dispute  *commerce.Dispute `json:"dispute,omitempty"`
}

// Service is the buyer-facing order surface.
type Service interface {
	ListForBuyer(ctx context.Context, buyerUserID string) ([]View, error)
	// MarkDelivered moves a pending-delivery order to shipped.
	MarkDelivered(ctx context.Context, orderNumber string) (*View, error)
	// MarkReceived confirms delivery of a shipped order.
	MarkReceived(ctx context.Context, orderNumber string) (*View, error)
	// DeclineAndDispute declines the item first and files the dispute only
	// when the decline succeeded. evidenceImage is optional.
	DeclineAndDispute(ctx context.Context, buyerUserID, orderNumber, itemID, reason, evidenceImage string) (*DeclineAndDisputeResult, error)
}

type service struct {
	directory Directory
}

// NewService wires the buyer order service.
func NewService(directory Directory) (Service, error) {
	if directory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order directory is required")
	}
	return &service{directory: directory}, nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerUserID string) ([]View, error) {
	if strings.TrimSpace(buyerUserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	orders, err := s.directory.ListBuyerOrders(ctx, buyerUserID)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(orders))
	for _, order := range orders {
		views = append(views, decorate(order))
	}
	return views, nil
}

func (s *service) MarkDelivered(ctx context.Context, orderNumber string) (*View, error) {
	return s.transition(ctx, orderNumber, enums.OrderStatusShipped)
}

func (s *service) MarkReceived(ctx context.Context, orderNumber string) (*View, error) {
	return s.transition(ctx, orderNumber, enums.OrderStatusDelivered)
}

// transition gates the move locally, applies it remotely and refetches so the
// caller always sees the commerce service's authoritative state.
func (s *service) transition(ctx context.Context, orderNumber string, to enums.OrderStatus) (*View, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	order, err := s.directory.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	current, parseErr := enums.ParseOrderStatus(order.Status)
	if parseErr != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in a recognizable state").
			WithDetails(map[string]any{"status": order.Status})
	}
	if err := lifecycle.ValidateOrderTransition(current, to); err != nil {
		return nil, err
	}
	if _, err := s.directory.UpdateOrderStatus(ctx, orderNumber, to.String()); err != nil {
		return nil, err
	}
	refreshed, err := s.directory.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	view := decorate(*refreshed)
	return &view, nil
}

func (s *service) DeclineAndDispute(ctx context.Context, buyerUserID, orderNumber, itemID, reason, evidenceImage string) (*DeclineAndDisputeResult, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order item id is required")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute reason is required")
	}

	order, err := s.directory.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if !actionAllowed(order.Status, enums.BuyerActionDeclineAndDispute) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item cannot be declined in its current state").
			WithDetails(map[string]any{"status": order.Status})
	}

	if err := s.directory.DeclineItem(ctx, itemID); err != nil {
		return nil, wrapStep(err, StepDecline, "declining item")
	}

	dispute, err := s.directory.FileDispute(ctx, commerce.FileDisputeInput{
		OrderNumber:   orderNumber,
		OrderItemID:   itemID,
		BuyerUserID:   buyerUserID,
		Reason:        reason,
		EvidenceImage: strings.TrimSpace(evidenceImage),
	})
	if err != nil {
		// The decline already landed. Refetch so the caller sees where the
		// item stands; a refetch failure rides along with the filing error.
		_, refetchErr := s.directory.GetOrder(ctx, orderNumber)
		joined := multierr.Append(err, refetchErr)
		return &DeclineAndDisputeResult{Declined: true},
			wrapStep(joined, StepDisputeFiling, "item declined but dispute filing failed")
	}

	return &DeclineAndDisputeResult{Declined: true, Dispute: dispute}, nil
}

func wrapStep(err error, step, message string) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message).
		WithDetails(map[string]any{"step": step})
}

func actionAllowed(status string, action enums.BuyerAction) bool {
	for _, allowed := range lifecycle.AllowedOrderActions(status) {
		if allowed == action {
			return true
		}
	}
	return false
}

func decorate(order commerce.Order) View {
	return View{
		Order:          order,
		StatusLabel:    statusLabel(order.Status),
		AllowedActions: lifecycle.AllowedOrderActions(order.Status),
	}
}

func statusLabel(status string) string {
	if parsed, err := enums.ParseOrderStatus(status); err == nil {
		return parsed.Label()
	}
	return enums.OrderStatus(status).Label()
}
