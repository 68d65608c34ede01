package commerce

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

	"github.com/sokoplace/sokoplace-backend/pkg/config"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 4096

// Client talks to the commerce service that owns orders, disputes and returns.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	serviceToken string
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

// NewClient builds a commerce client from configuration.
func NewClient(cfg config.CommerceConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "commerce base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL:      baseURL,
		serviceToken: strings.TrimSpace(cfg.ServiceToken),
		httpClient:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// CreateOrder materializes a paid checkout into an order. The commerce service
// enforces reference uniqueness; a duplicate reference returns the existing order.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "orders", input, &order); err != nil {
		return nil, recodeOrderCreation(err)
	}
	return &order, nil
}

// ListBuyerOrders returns the buyer's orders, newest first.
func (c *Client) ListBuyerOrders(ctx context.Context, buyerUserID string) ([]Order, error) {
	if strings.TrimSpace(buyerUserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	var orders []Order
	path := "orders?buyer_id=" + url.QueryEscape(buyerUserID)
	if err := c.do(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order by its number.
func (c *Client) GetOrder(ctx context.Context, orderNumber string) (*Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	var order Order
	if err := c.do(ctx, http.MethodGet, "orders/"+url.PathEscape(orderNumber), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus moves an order to the given status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderNumber, status string) (*Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	body := map[string]string{"status": status}
	var order Order
	if err := c.do(ctx, http.MethodPatch, "orders/"+url.PathEscape(orderNumber)+"/status", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// DeclineItem rejects one delivered order item.
func (c *Client) DeclineItem(ctx context.Context, itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order item id is required")
	}
	return c.do(ctx, http.MethodPost, "orders/items/"+url.PathEscape(itemID)+"/decline", nil, nil)
}

// FileDispute opens a dispute against one order item.
func (c *Client) FileDispute(ctx context.Context, input FileDisputeInput) (*Dispute, error) {
	if strings.TrimSpace(input.OrderItemID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order item id is required")
	}
	var dispute Dispute
	if err := c.do(ctx, http.MethodPost, "disputes", input, &dispute); err != nil {
		return nil, err
	}
	return &dispute, nil
}

// ListBuyerDisputes returns the buyer's disputes, newest first.
func (c *Client) ListBuyerDisputes(ctx context.Context, buyerUserID string) ([]Dispute, error) {
	if strings.TrimSpace(buyerUserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	var disputes []Dispute
	path := "disputes?buyer_id=" + url.QueryEscape(buyerUserID)
	if err := c.do(ctx, http.MethodGet, path, nil, &disputes); err != nil {
		return nil, err
	}
	return disputes, nil
}

// GetDispute fetches one dispute by id.
func (c *Client) GetDispute(ctx context.Context, disputeID string) (*Dispute, error) {
	if strings.TrimSpace(disputeID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute id is required")
	}
	var dispute Dispute
	if err := c.do(ctx, http.MethodGet, "disputes/"+url.PathEscape(disputeID), nil, &dispute); err != nil {
		return nil, err
	}
	return &dispute, nil
}

// UpdateDisputeStatus moves a dispute to the given status.
func (c *Client) UpdateDisputeStatus(ctx context.Context, disputeID, status string) (*Dispute, error) {
	if strings.TrimSpace(disputeID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute id is required")
	}
	body := map[string]string{"status": status}
	var dispute Dispute
	if err := c.do(ctx, http.MethodPatch, "disputes/"+url.PathEscape(disputeID)+"/status", body, &dispute); err != nil {
		return nil, err
	}
	return &dispute, nil
}

// InitiateReturn opens a return for one order item.
func (c *Client) InitiateReturn(ctx context.Context, orderNumber, itemID string) (*ReturnRequest, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order item id is required")
	}
	body := map[string]string{
		"order_number":  orderNumber,
		"order_item_id": itemID,
	}
	var ret ReturnRequest
	if err := c.do(ctx, http.MethodPost, "returns", body, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal commerce request")
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"))
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build commerce request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.serviceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute commerce request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode commerce response")
	}
	return nil
}

func (c *Client) apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	detail := strings.TrimSpace(string(body))

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Message != "" {
			detail = envelope.Error.Message
		} else if envelope.Message != "" {
			detail = envelope.Message
		}
	}

	wrapped := fmt.Errorf("status %d: %s", resp.StatusCode, detail)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, wrapped, "commerce request rejected")
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, wrapped, "commerce resource not found")
	case http.StatusConflict:
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, wrapped, "commerce request conflicted")
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, wrapped, "commerce request invalid")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, wrapped, "commerce request failed")
	}
}

func recodeOrderCreation(err error) error {
	if appErr := pkgerrors.As(err); appErr != nil {
		switch appErr.Code() {
		case pkgerrors.CodeUnauthorized, pkgerrors.CodeStateConflict:
			return err
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeOrderCreation, err, "materializing order")
}
