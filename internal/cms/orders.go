package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jafarshop/storefront/internal/domain"
)

// OrderSummary is one row in a shopper's order history
type OrderSummary struct {
	ID            string    `json:"_id"`
	OrderID       string    `json:"orderId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	TotalAmount   float64   `json:"totalAmount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// OrdersByUserID lists a shopper's orders, newest first
func (c *Client) OrdersByUserID(ctx context.Context, userID string) ([]OrderSummary, error) {
	result, err := c.Query(ctx, OrdersByUserIDQuery, map[string]interface{}{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("orders by user id query failed: %w", err)
	}

	var orders []OrderSummary
	if err := json.Unmarshal(result, &orders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal orders: %w", err)
	}
	return orders, nil
}

// CreateOrder creates an order document and decrements the stock counters of
// its line items in the same mutation transaction, so a replayed webhook that
// fails midway cannot record the order without adjusting stock.
func (c *Client) CreateOrder(ctx context.Context, order *domain.Order) (string, error) {
	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]interface{}{
			"product":  map[string]interface{}{"_type": "reference", "_ref": item.ProductID},
			"title":    item.Title,
			"price":    item.Price,
			"quantity": item.Quantity,
		})
	}

	doc := map[string]interface{}{
		"_type":        "order",
		"orderId":      order.OrderID,
		"userId":       order.UserID,
		"customer":     map[string]interface{}{"_type": "reference", "_ref": order.CustomerRef},
		"items":        items,
		"subtotal":     order.Subtotal,
		"shippingCost": order.ShippingCost,
		"totalAmount":  order.TotalAmount,
		"status":       string(order.Status),
		"payment": map[string]interface{}{
			"method":                "card",
			"status":                string(order.PaymentStatus),
			"stripePaymentIntentId": order.PaymentIntentID,
		},
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}

	mutations := []Mutation{{Create: doc}}
	for _, item := range order.Items {
		mutations = append(mutations, Mutation{
			Patch: &Patch{
				ID:  item.ProductID,
				Dec: map[string]interface{}{"quantity": item.Quantity},
			},
		})
	}

	resp, err := c.Mutate(ctx, mutations)
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("create order returned no document id")
	}
	return resp.Results[0].ID, nil
}

// OrderByOrderID fetches a single order with line items. Returns (nil, nil)
// when the order does not exist.
func (c *Client) OrderByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	result, err := c.Query(ctx, OrderByOrderIDQuery, map[string]interface{}{"orderId": orderID})
	if err != nil {
		return nil, fmt.Errorf("order by id query failed: %w", err)
	}
	if isNullResult(result) {
		return nil, nil
	}

	var raw struct {
		ID            string             `json:"_id"`
		OrderID       string             `json:"orderId"`
		UserID        string             `json:"userId"`
		Status        string             `json:"status"`
		PaymentStatus string             `json:"paymentStatus"`
		Subtotal      float64            `json:"subtotal"`
		ShippingCost  float64            `json:"shippingCost"`
		TotalAmount   float64            `json:"totalAmount"`
		CreatedAt     time.Time          `json:"createdAt"`
		Items         []domain.OrderItem `json:"items"`
	}
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}

	return &domain.Order{
		ID:            raw.ID,
		OrderID:       raw.OrderID,
		UserID:        raw.UserID,
		Status:        domain.OrderStatus(raw.Status),
		PaymentStatus: domain.PaymentStatus(raw.PaymentStatus),
		Subtotal:      raw.Subtotal,
		ShippingCost:  raw.ShippingCost,
		TotalAmount:   raw.TotalAmount,
		CreatedAt:     raw.CreatedAt,
		Items:         raw.Items,
	}, nil
}
