package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sokoplace/sokoplace-backend/pkg/config"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.CommerceConfig{
		BaseURL:      server.URL,
		ServiceToken: "svc-token",
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestCreateOrder(t *testing.T) {
	var gotAuth string
	var gotInput CreateOrderInput

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotInput)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Order{
			OrderNumber: "ORD-1001",
			Status:      "PENDING",
			Reference:   gotInput.Reference,
		})
	}))

	order, err := client.CreateOrder(context.Background(), CreateOrderInput{
		BuyerUserID: "buyer-1",
		BuyerEmail:  "buyer@sokoplace.test",
		Reference:   "ref-001",
		AmountMinor: 153050,
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if order.OrderNumber != "ORD-1001" {
		t.Errorf("unexpected order number %q", order.OrderNumber)
	}
	if gotAuth != "Bearer svc-token" {
		t.Errorf("expected service token header, got %q", gotAuth)
	}
	if gotInput.Reference != "ref-001" {
		t.Errorf("unexpected reference in request %q", gotInput.Reference)
	}
}

func TestCreateOrderFailureRecoded(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.CreateOrder(context.Background(), CreateOrderInput{Reference: "ref-001"})
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeOrderCreation {
		t.Fatalf("expected order creation error, got %v", err)
	}
}

func TestCreateOrderUnauthorizedKeepsCode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.CreateOrder(context.Background(), CreateOrderInput{Reference: "ref-001"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestListBuyerOrders(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("buyer_id") != "buyer-1" {
			t.Errorf("expected buyer_id query, got %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]Order{
			{OrderNumber: "ORD-2", Status: "SHIPPED"},
			{OrderNumber: "ORD-1", Status: "DELIVERED"},
		})
	}))

	orders, err := client.ListBuyerOrders(context.Background(), "buyer-1")
	if err != nil {
		t.Fatalf("ListBuyerOrders returned error: %v", err)
	}
	if len(orders) != 2 || orders[0].OrderNumber != "ORD-2" {
		t.Errorf("unexpected orders %+v", orders)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/orders/ORD-1/status" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(Order{OrderNumber: "ORD-1", Status: body["status"]})
	}))

	order, err := client.UpdateOrderStatus(context.Background(), "ORD-1", "DELIVERED")
	if err != nil {
		t.Fatalf("UpdateOrderStatus returned error: %v", err)
	}
	if order.Status != "DELIVERED" {
		t.Errorf("unexpected status %q", order.Status)
	}
}

func TestUpdateOrderStatusConflict(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"message":"order already delivered"}}`))
	}))

	_, err := client.UpdateOrderStatus(context.Background(), "ORD-1", "DELIVERED")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict error, got %v", err)
	}
}

func TestFileDisputeAndGet(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/disputes":
			var input FileDisputeInput
			_ = json.NewDecoder(r.Body).Decode(&input)
			if input.EvidenceImage != "https://img.sokoplace.test/evidence/1.jpg" {
				t.Errorf("expected evidence image on the wire, got %q", input.EvidenceImage)
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(Dispute{
				ID:          "disp-1",
				OrderItemID: input.OrderItemID,
				Status:      "PENDING",
			})
		case r.Method == http.MethodGet && r.URL.Path == "/disputes/disp-1":
			_ = json.NewEncoder(w).Encode(Dispute{ID: "disp-1", Status: "PROCESSING"})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	dispute, err := client.FileDispute(context.Background(), FileDisputeInput{
		OrderNumber:   "ORD-1",
		OrderItemID:   "item-1",
		BuyerUserID:   "buyer-1",
		Reason:        "damaged on arrival",
		EvidenceImage: "https://img.sokoplace.test/evidence/1.jpg",
	})
	if err != nil {
		t.Fatalf("FileDispute returned error: %v", err)
	}
	if dispute.Status != "PENDING" {
		t.Errorf("unexpected status %q", dispute.Status)
	}

	fetched, err := client.GetDispute(context.Background(), "disp-1")
	if err != nil {
		t.Fatalf("GetDispute returned error: %v", err)
	}
	if fetched.Status != "PROCESSING" {
		t.Errorf("unexpected refetched status %q", fetched.Status)
	}
}

func TestDeclineItemNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	err := client.DeclineItem(context.Background(), "item-404")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestInitiateReturn(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/returns" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ReturnRequest{ID: "ret-1", Status: "REQUESTED"})
	}))

	ret, err := client.InitiateReturn(context.Background(), "ORD-1", "item-1")
	if err != nil {
		t.Fatalf("InitiateReturn returned error: %v", err)
	}
	if ret.ID != "ret-1" {
		t.Errorf("unexpected return id %q", ret.ID)
	}
}
