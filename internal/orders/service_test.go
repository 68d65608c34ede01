package orders

import (
	"context"
	"testing"

	"github.com/sokoplace/sokoplace-backend/internal/commerce"
	"github.com/sokoplace/sokoplace-backend/pkg/enums"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

type fakeDirectory struct {
	orders map[string]*commerce.Order

	declineCalls int
	declineErr   error
	disputeCalls int
	disputeErr   error
	lastDispute  commerce.FileDisputeInput
	statusCalls  []string
}

func (f *fakeDirectory) ListBuyerOrders(context.Context, string) ([]commerce.Order, error) {
	out := make([]commerce.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeDirectory) GetOrder(_ context.Context, orderNumber string) (*commerce.Order, error) {
	order, ok := f.orders[orderNumber]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	copied := *order
	return &copied, nil
}

func (f *fakeDirectory) UpdateOrderStatus(_ context.Context, orderNumber, status string) (*commerce.Order, error) {
	f.statusCalls = append(f.statusCalls, orderNumber+":"+status)
	order, ok := f.orders[orderNumber]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	order.Status = status
	copied := *order
	return &copied, nil
}

func (f *fakeDirectory) DeclineItem(context.Context, string) error {
	f.declineCalls++
	return f.declineErr
}

func (f *fakeDirectory) FileDispute(_ context.Context, input commerce.FileDisputeInput) (*commerce.Dispute, error) {
	f.disputeCalls++
	f.lastDispute = input
	if f.disputeErr != nil {
		return nil, f.disputeErr
	}
	return &commerce.Dispute{
		ID:          "disp-1",
		OrderNumber: input.OrderNumber,
		OrderItemID: input.OrderItemID,
		Reason:      input.Reason,
		Status:      "PENDING",
	}, nil
}

func newFakeDirectory(status string) *fakeDirectory {
	return &fakeDirectory{
		orders: map[string]*commerce.Order{
			"ORD-1": {
				OrderNumber: "ORD-1",
				BuyerUserID: "buyer-1",
				Status:      status,
				Items: []commerce.OrderItem{
					{ID: "item-1", ProductName: "Solar Lantern", Status: status},
				},
			},
		},
	}
}

func stepDetail(t *testing.T, err error) string {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %T", err)
	}
	details, ok := appErr.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected detail map, got %T", appErr.Details())
	}
	step, _ := details["step"].(string)
	return step
}

func newOrderService(t *testing.T, dir Directory) Service {
	t.Helper()
	svc, err := NewService(dir)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestListForBuyerDecoratesActions(t *testing.T) {
	dir := newFakeDirectory("SHIPPED")
	svc := newOrderService(t, dir)

	views, err := svc.ListForBuyer(context.Background(), "buyer-1")
	if err != nil {
		t.Fatalf("ListForBuyer returned error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one order, got %d", len(views))
	}
	view := views[0]
	if view.StatusLabel != "Shipped" {
		t.Errorf("unexpected status label %q", view.StatusLabel)
	}
	want := []enums.BuyerAction{enums.BuyerActionRateProduct, enums.BuyerActionDeclineAndDispute}
	if len(view.AllowedActions) != len(want) {
		t.Fatalf("expected actions %v, got %v", want, view.AllowedActions)
	}
	for i := range want {
		if view.AllowedActions[i] != want[i] {
			t.Errorf("action %d: expected %s, got %s", i, want[i], view.AllowedActions[i])
		}
	}
}

func TestListForBuyerUnknownStatusLabel(t *testing.T) {
	dir := newFakeDirectory("SOMETHING_NEW")
	svc := newOrderService(t, dir)

	views, err := svc.ListForBuyer(context.Background(), "buyer-1")
	if err != nil {
		t.Fatalf("ListForBuyer returned error: %v", err)
	}
	if views[0].StatusLabel != "Paid" {
		t.Errorf("unknown status should label as Paid, got %q", views[0].StatusLabel)
	}
	if len(views[0].AllowedActions) != 0 {
		t.Errorf("unknown status should allow no actions, got %v", views[0].AllowedActions)
	}
}

func TestMarkDelivered(t *testing.T) {
	dir := newFakeDirectory("PENDING_DELIVERY")
	svc := newOrderService(t, dir)

	view, err := svc.MarkDelivered(context.Background(), "ORD-1")
	if err != nil {
		t.Fatalf("MarkDelivered returned error: %v", err)
	}
	if view.Status != "SHIPPED" {
		t.Errorf("expected refreshed status SHIPPED, got %q", view.Status)
	}
	if len(dir.statusCalls) != 1 || dir.statusCalls[0] != "ORD-1:SHIPPED" {
		t.Errorf("unexpected status calls %v", dir.statusCalls)
	}
}

func TestMarkReceived(t *testing.T) {
	dir := newFakeDirectory("SHIPPED")
	svc := newOrderService(t, dir)

	view, err := svc.MarkReceived(context.Background(), "ORD-1")
	if err != nil {
		t.Fatalf("MarkReceived returned error: %v", err)
	}
	if view.Status != "DELIVERED" {
		t.Errorf("expected refreshed status DELIVERED, got %q", view.Status)
	}
}

func TestMarkReceivedRejectedOutOfState(t *testing.T) {
	dir := newFakeDirectory("PENDING")
	svc := newOrderService(t, dir)

	_, err := svc.MarkReceived(context.Background(), "ORD-1")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(dir.statusCalls) != 0 {
		t.Errorf("no remote write should happen, got %v", dir.statusCalls)
	}
}

func TestDeclineAndDisputeHappyPath(t *testing.T) {
	dir := newFakeDirectory("SHIPPED")
	svc := newOrderService(t, dir)

	result, err := svc.DeclineAndDispute(context.Background(), "buyer-1", "ORD-1", "item-1", "damaged on arrival", "https://img.sokoplace.test/evidence/1.jpg")
	if err != nil {
		t.Fatalf("DeclineAndDispute returned error: %v", err)
	}
	if !result.Declined {
		t.Error("expected declined flag")
	}
	if result.Dispute == nil || result.Dispute.Status != "PENDING" {
		t.Fatalf("expected pending dispute, got %+v", result.Dispute)
	}
	if dir.declineCalls != 1 || dir.disputeCalls != 1 {
		t.Errorf("expected one decline and one dispute call, got %d/%d", dir.declineCalls, dir.disputeCalls)
	}
	if dir.lastDispute.Reason != "damaged on arrival" {
		t.Errorf("unexpected dispute input %+v", dir.lastDispute)
	}
	if dir.lastDispute.EvidenceImage != "https://img.sokoplace.test/evidence/1.jpg" {
		t.Errorf("expected evidence image forwarded, got %q", dir.lastDispute.EvidenceImage)
	}
}

func TestDeclineAndDisputeDeclineFailureStopsSaga(t *testing.T) {
	dir := newFakeDirectory("SHIPPED")
	dir.declineErr = pkgerrors.New(pkgerrors.CodeDependency, "decline endpoint unavailable")
	svc := newOrderService(t, dir)

	_, err := svc.DeclineAndDispute(context.Background(), "buyer-1", "ORD-1", "item-1", "damaged", "")
	if err == nil {
		t.Fatal("expected error when decline fails")
	}
	if step := stepDetail(t, err); step != StepDecline {
		t.Errorf("expected step %q, got %q", StepDecline, step)
	}
	if dir.disputeCalls != 0 {
		t.Error("dispute filing must not run after a failed decline")
	}
}

func TestDeclineAndDisputeFilingFailureReportedDistinctly(t *testing.T) {
	dir := newFakeDirectory("SHIPPED")
	dir.disputeErr = pkgerrors.New(pkgerrors.CodeDependency, "dispute endpoint unavailable")
	svc := newOrderService(t, dir)

	result, err := svc.DeclineAndDispute(context.Background(), "buyer-1", "ORD-1", "item-1", "damaged", "")
	if err == nil {
		t.Fatal("expected error when dispute filing fails")
	}
	if step := stepDetail(t, err); step != StepDisputeFiling {
		t.Errorf("expected step %q, got %q", StepDisputeFiling, step)
	}
	// The decline still happened and the caller is told so.
	if result == nil || !result.Declined {
		t.Errorf("expected declined flag in partial result, got %+v", result)
	}
	if dir.declineCalls != 1 {
		t.Errorf("expected one decline call, got %d", dir.declineCalls)
	}
}

func TestDeclineAndDisputeRejectedOutOfState(t *testing.T) {
	for _, status := range []string{"PENDING", "DELIVERED", "DISPUTED", "RETURNED", "UNKNOWN"} {
		dir := newFakeDirectory(status)
		svc := newOrderService(t, dir)

		_, err := svc.DeclineAndDispute(context.Background(), "buyer-1", "ORD-1", "item-1", "damaged", "")
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
			t.Errorf("status %s: expected state conflict, got %v", status, err)
		}
		if dir.declineCalls != 0 {
			t.Errorf("status %s: decline must not run", status)
		}
	}
}
