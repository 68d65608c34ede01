package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sokoplace/sokoplace-backend/pkg/config"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.GatewayConfig{
		BaseURL:   server.URL,
		SecretKey: "sk_test_secret",
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client, server
}

func TestInitialize(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://pay.example.com/abc123",
				"access_code":       "abc123",
				"reference":         "ref-001",
			},
		})
	}))

	result, err := client.Initialize(context.Background(), InitializeInput{
		Email:     "buyer@sokoplace.test",
		Amount:    decimal.NewFromFloat(1530.50),
		Reference: "ref-001",
	})
	if err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if result.AuthorizationURL != "https://pay.example.com/abc123" {
		t.Errorf("unexpected authorization url %q", result.AuthorizationURL)
	}
	if result.Reference != "ref-001" {
		t.Errorf("unexpected reference %q", result.Reference)
	}
	if gotAuth != "Bearer sk_test_secret" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	// 1530.50 major units travel as 153050 minor units.
	if amount, ok := gotBody["amount"].(float64); !ok || int64(amount) != 153050 {
		t.Errorf("expected amount 153050, got %v", gotBody["amount"])
	}
}

func TestInitializeRejectedByGateway(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "Invalid key",
		})
	}))

	_, err := client.Initialize(context.Background(), InitializeInput{
		Email:  "buyer@sokoplace.test",
		Amount: decimal.NewFromInt(100),
	})
	if err == nil {
		t.Fatal("expected error for rejected initialize")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestInitializeValidation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request should reach the gateway")
	}))

	if _, err := client.Initialize(context.Background(), InitializeInput{Amount: decimal.NewFromInt(100)}); err == nil {
		t.Error("expected error for missing email")
	}
	if _, err := client.Initialize(context.Background(), InitializeInput{Email: "a@b.c", Amount: decimal.Zero}); err == nil {
		t.Error("expected error for non-positive amount")
	}
}

func TestVerify(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/ref-001" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]any{
				"reference": "ref-001",
				"status":    "success",
				"amount":    153050,
				"channel":   "card",
				"paid_at":   "2026-03-10T09:15:00Z",
			},
		})
	}))

	result, err := client.Verify(context.Background(), "ref-001")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !result.Succeeded() {
		t.Error("expected settled transaction")
	}
	if !result.Amount.Equal(decimal.NewFromFloat(1530.50)) {
		t.Errorf("expected amount 1530.50, got %s", result.Amount)
	}
}

func TestVerifyUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))

	_, err := client.Verify(context.Background(), "ref-001")
	if err == nil {
		t.Fatal("expected error for unauthorized verify")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestVerifyGatewayFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Verify(context.Background(), "ref-001")
	if err == nil {
		t.Fatal("expected error for gateway failure")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeVerification {
		t.Fatalf("expected verification error, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(config.GatewayConfig{SecretKey: "sk"}); err == nil {
		t.Error("expected error for missing base url")
	}
	if _, err := NewClient(config.GatewayConfig{BaseURL: "https://api.example.com"}); err == nil {
		t.Error("expected error for missing secret key")
	}
}
