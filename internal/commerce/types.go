package commerce

import "time"

// Order is the remote commerce service's view of a buyer order.
type Order struct {
	OrderNumber string      `json:"order_number"`
	BuyerUserID string      `json:"buyer_user_id"`
	BuyerEmail  string      `json:"buyer_email"`
	Status      string      `json:"status"`
	Reference   string      `json:"payment_reference"`
	AmountMinor int64       `json:"amount_minor"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderItem is one fulfilled line within an order. Status is tracked per line
// so a single item can be disputed while the rest of the order proceeds.
type OrderItem struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	VendorEmail    string `json:"vendor_email"`
	Quantity       int    `json:"quantity"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
	Status         string `json:"status"`
}

// Dispute is the remote service's view of a buyer dispute.
type Dispute struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"order_number"`
	OrderItemID string    `json:"order_item_id"`
	BuyerUserID string    `json:"buyer_user_id"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	Resolution  string    `json:"resolution"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReturnRequest is the remote service's record of an initiated return.
type ReturnRequest struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"order_number"`
	OrderItemID string    `json:"order_item_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateOrderInput materializes a paid checkout into an order.
type CreateOrderInput struct {
	BuyerUserID string           `json:"buyer_user_id"`
	BuyerEmail  string           `json:"buyer_email"`
	Reference   string           `json:"payment_reference"`
	AmountMinor int64            `json:"amount_minor"`
	Phone       string           `json:"phone"`
	Address     string           `json:"delivery_address"`
	Method      string           `json:"delivery_method"`
	Items       []CreateItemLine `json:"items"`
}

// CreateItemLine is one product line in a materialized order.
type CreateItemLine struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	VendorEmail    string `json:"vendor_email"`
	Quantity       int    `json:"quantity"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
}

// FileDisputeInput opens a dispute against one order item. EvidenceImage is
// an optional URL to a photo backing the claim.
type FileDisputeInput struct {
	OrderNumber   string `json:"order_number"`
	OrderItemID   string `json:"order_item_id"`
	BuyerUserID   string `json:"buyer_user_id"`
	Reason        string `json:"reason"`
	EvidenceImage string `json:"evidence_image,omitempty"`
}
