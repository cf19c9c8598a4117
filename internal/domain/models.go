package domain

import (
	"time"
)

// CartItem is one line in a shopper's cart. Price and name are the values the
// client saw when adding the item; checkout always re-reads both from the CMS.
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     *string `json:"image,omitempty"`
}

// ProductSnapshot is the authoritative product record fetched from the CMS.
// It is the single source of truth for availability and price at validation time.
type ProductSnapshot struct {
	ID            string   `json:"_id"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`
	InStock       bool     `json:"inStock"`
	Quantity      int      `json:"quantity"`
	Featured      bool     `json:"featured"`
	Description   string   `json:"description,omitempty"`
	Images        []string `json:"images,omitempty"`
}

// StockInfo is the per-product result of reconciling a cart line against
// live CMS stock. Recomputed wholesale on every cart change.
type StockInfo struct {
	ProductID         string `json:"productId"`
	CurrentStock      int    `json:"currentStock"`
	IsOutOfStock      bool   `json:"isOutOfStock"`
	ExceedsStock      bool   `json:"exceedsStock"`
	AvailableQuantity int    `json:"availableQuantity"`
}

// HasIssue reports whether this line should block checkout.
func (s StockInfo) HasIssue() bool {
	return s.IsOutOfStock || s.ExceedsStock
}

// CheckoutResult is the terminal value of a checkout attempt. SessionID is
// kept for the idempotency record and never serialized to the client.
type CheckoutResult struct {
	Success   bool   `json:"success"`
	URL       string `json:"url,omitempty"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"-"`
}

// Customer is the CMS customer document linking an identity-provider user
// to a payment-provider customer.
type Customer struct {
	ID                string    `json:"_id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	UserID            string    `json:"userId"`
	PaymentCustomerID string    `json:"paymentCustomerId"`
	CreatedAt         time.Time `json:"createdAt"`
}

// OrderItem is a priced line captured on an order at payment time.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order is the CMS order document created when a payment session completes.
type Order struct {
	ID              string        `json:"_id"`
	OrderID         string        `json:"orderId"`
	UserID          string        `json:"userId"`
	CustomerRef     string        `json:"customerRef"`
	Items           []OrderItem   `json:"items"`
	Subtotal        float64       `json:"subtotal"`
	ShippingCost    float64       `json:"shippingCost"`
	TotalAmount     float64       `json:"totalAmount"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	PaymentIntentID string        `json:"paymentIntentId,omitempty"`
	Status          OrderStatus   `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// SessionLineItem is one paid line on a retrieved payment session.
type SessionLineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Amount   int64  `json:"amount"`
}

// SessionSummary is the safe projection of a retrieved payment session
// returned to the shopper who created it.
type SessionSummary struct {
	ID            string            `json:"id"`
	Email         string            `json:"email,omitempty"`
	Name          string            `json:"name,omitempty"`
	AmountTotal   int64             `json:"amount"`
	PaymentStatus string            `json:"status"`
	Items         []SessionLineItem `json:"items,omitempty"`
}

// IdempotencyKey records a completed checkout submission so a duplicate
// submission with the same key replays the stored session instead of
// creating a second one.
type IdempotencyKey struct {
	Key         string
	UserID      string
	SessionID   string
	SessionURL  string
	RequestHash string
	CreatedAt   time.Time
}
