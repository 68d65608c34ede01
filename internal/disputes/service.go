package disputes

import (
	"context"
	"strings"

	"github.com/sokoplace/sokoplace-backend/internal/commerce"
	"github.com/sokoplace/sokoplace-backend/internal/lifecycle"
	"github.com/sokoplace/sokoplace-backend/pkg/enums"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

// Directory is the commerce surface the dispute view reads and writes through.
type Directory interface {
	ListBuyerDisputes(ctx context.Context, buyerUserID string) ([]commerce.Dispute, error)
	GetDispute(ctx context.Context, disputeID string) (*commerce.Dispute, error)
	UpdateDisputeStatus(ctx context.Context, disputeID, status string) (*commerce.Dispute, error)
	FileDispute(ctx context.Context, input commerce.FileDisputeInput) (*commerce.Dispute, error)
	GetOrder(ctx context.Context, orderNumber string) (*commerce.Order, error)
	InitiateReturn(ctx context.Context, orderNumber, itemID string) (*commerce.ReturnRequest, error)
}

// View is a dispute decorated with the actions the buyer may take on it.
type View struct {
	commerce.Dispute
	AllowedActions []enums.BuyerAction `json:"allowed_actions"`
}

// FileInput opens a dispute against one order item.
type FileInput struct {
	BuyerUserID   string
	OrderNumber   string
	OrderItemID   string
	Reason        string
	EvidenceImage string
}

// Service is the buyer-facing dispute surface.
type Service interface {
	ListForBuyer(ctx context.Context, buyerUserID string) ([]View, error)
	File(ctx context.Context, input FileInput) (*View, error)
	// AcceptResolution moves a dispute awaiting the buyer's sign-off to
	// resolved and returns the refetched state.
	AcceptResolution(ctx context.Context, disputeID string) (*View, error)
	// RequestReturn initiates a return for the disputed item. The order must
	// be shipped, delivered or disputed, or the dispute still pending.
	RequestReturn(ctx context.Context, disputeID string) (*commerce.ReturnRequest, error)
}

type service struct {
	directory Directory
}

// NewService wires the buyer dispute service.
func NewService(directory Directory) (Service, error) {
	if directory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dispute directory is required")
	}
	return &service{directory: directory}, nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerUserID string) ([]View, error) {
	if strings.TrimSpace(buyerUserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	disputes, err := s.directory.ListBuyerDisputes(ctx, buyerUserID)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(disputes))
	for _, dispute := range disputes {
		views = append(views, decorate(dispute))
	}
	return views, nil
}

func (s *service) File(ctx context.Context, input FileInput) (*View, error) {
	if strings.TrimSpace(input.OrderItemID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order item id is required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute reason is required")
	}
	dispute, err := s.directory.FileDispute(ctx, commerce.FileDisputeInput{
		OrderNumber:   input.OrderNumber,
		OrderItemID:   input.OrderItemID,
		BuyerUserID:   input.BuyerUserID,
		Reason:        input.Reason,
		EvidenceImage: strings.TrimSpace(input.EvidenceImage),
	})
	if err != nil {
		return nil, err
	}
	view := decorate(*dispute)
	return &view, nil
}

func (s *service) AcceptResolution(ctx context.Context, disputeID string) (*View, error) {
	if strings.TrimSpace(disputeID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute id is required")
	}
	dispute, err := s.directory.GetDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	current, parseErr := enums.ParseDisputeStatus(dispute.Status)
	if parseErr != nil || current != enums.DisputeStatusPendingResolution {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "dispute has no resolution to accept").
			WithDetails(map[string]any{"status": dispute.Status})
	}
	if err := lifecycle.ValidateDisputeTransition(current, enums.DisputeStatusResolved); err != nil {
		return nil, err
	}
	if _, err := s.directory.UpdateDisputeStatus(ctx, disputeID, enums.DisputeStatusResolved.String()); err != nil {
		return nil, err
	}
	refreshed, err := s.directory.GetDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	view := decorate(*refreshed)
	return &view, nil
}

func (s *service) RequestReturn(ctx context.Context, disputeID string) (*commerce.ReturnRequest, error) {
	if strings.TrimSpace(disputeID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute id is required")
	}
	dispute, err := s.directory.GetDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	orderStatus := ""
	if dispute.OrderNumber != "" {
		if order, err := s.directory.GetOrder(ctx, dispute.OrderNumber); err == nil {
			orderStatus = order.Status
		}
	}
	if !lifecycle.ReturnEligible(orderStatus, dispute.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item is not eligible for return").
			WithDetails(map[string]any{
				"order_status":   orderStatus,
				"dispute_status": dispute.Status,
			})
	}

	return s.directory.InitiateReturn(ctx, dispute.OrderNumber, dispute.OrderItemID)
}

func decorate(dispute commerce.Dispute) View {
	return View{
		Dispute:        dispute,
		AllowedActions: lifecycle.AllowedDisputeActions(dispute.Status),
	}
}
