package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sokoplace/sokoplace-backend/pkg/config"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

const (
	responseBodyReadLimit int64 = 4096

	statusSuccess = "success"
)

// InitializeInput starts a hosted payment for a checkout session. Amount is in
// major currency units; the gateway is paid in minor units.
type InitializeInput struct {
	Email     string
	Amount    decimal.Decimal
	Reference string
	Callback  string
	Metadata  map[string]string
}

// InitializeResult carries the redirect the buyer completes payment on.
type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResult is the gateway's settled view of one transaction.
type VerifyResult struct {
	Reference string
	Status    string
	// Amount is converted back to major units from the gateway's minor-unit figure.
	Amount  decimal.Decimal
	Channel string
	PaidAt  string
}

// Succeeded reports whether the gateway settled the transaction.
func (r VerifyResult) Succeeded() bool {
	return strings.EqualFold(r.Status, statusSuccess)
}

// Client talks to the payment gateway's transaction API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the gateway client from configuration.
func NewClient(cfg config.GatewayConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway base url is required")
	}
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway secret key is required")
	}

	timeout := cfg.VerifyTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Initialize creates a transaction and returns the hosted payment redirect.
func (c *Client) Initialize(ctx context.Context, input InitializeInput) (*InitializeResult, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer email is required")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	body := map[string]any{
		"email":  input.Email,
		"amount": toMinorUnits(input.Amount),
	}
	if input.Reference != "" {
		body["reference"] = input.Reference
	}
	if input.Callback != "" {
		body["callback_url"] = input.Callback
	}
	if len(input.Metadata) > 0 {
		body["metadata"] = input.Metadata
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal initialize request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("transaction/initialize"), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build initialize request")
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute initialize request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, "initialize request failed")
	}

	var apiResp struct {
		Status bool   `json:"status"`
		Msg    string `json:"message"`
		Data   struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode initialize response")
	}
	if !apiResp.Status {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("gateway rejected initialize: %s", apiResp.Msg))
	}

	return &InitializeResult{
		AuthorizationURL: apiResp.Data.AuthorizationURL,
		AccessCode:       apiResp.Data.AccessCode,
		Reference:        apiResp.Data.Reference,
	}, nil
}

// Verify fetches the settled state of a transaction by its reference.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}

	endpoint := fmt.Sprintf("%s/transaction/verify/%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build verify request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeVerification, err, "execute verify request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, c.apiErrorWithCode(resp, pkgerrors.CodeUnauthorized, "verify request rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.apiErrorWithCode(resp, pkgerrors.CodeVerification, "verify request failed")
	}

	var apiResp struct {
		Status bool   `json:"status"`
		Msg    string `json:"message"`
		Data   struct {
			Reference   string `json:"reference"`
			Status      string `json:"status"`
			AmountMinor int64  `json:"amount"`
			Channel     string `json:"channel"`
			PaidAt      string `json:"paid_at"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeVerification, err, "decode verify response")
	}
	if !apiResp.Status {
		return nil, pkgerrors.New(pkgerrors.CodeVerification, fmt.Sprintf("gateway rejected verify: %s", apiResp.Msg))
	}

	return &VerifyResult{
		Reference: apiResp.Data.Reference,
		Status:    apiResp.Data.Status,
		Amount:    fromMinorUnits(apiResp.Data.AmountMinor),
		Channel:   apiResp.Data.Channel,
		PaidAt:    apiResp.Data.PaidAt,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) apiError(resp *http.Response, msg string) error {
	return c.apiErrorWithCode(resp, pkgerrors.CodeDependency, msg)
}

func (c *Client) apiErrorWithCode(resp *http.Response, code pkgerrors.Code, msg string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	return pkgerrors.Wrap(code, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), msg)
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"))
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}
