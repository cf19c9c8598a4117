package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jafarshop/storefront/internal/domain"
)

// CustomerByUserID fetches the customer document for an identity-provider
// user id. Returns (nil, nil) when no document exists.
func (c *Client) CustomerByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	result, err := c.Query(ctx, CustomerByUserIDQuery, map[string]interface{}{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("customer by user id query failed: %w", err)
	}
	if isNullResult(result) {
		return nil, nil
	}

	var customer domain.Customer
	if err := json.Unmarshal(result, &customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}
	return &customer, nil
}

// CreateCustomer creates a customer document and returns its id
func (c *Client) CreateCustomer(ctx context.Context, customer *domain.Customer) (string, error) {
	doc := map[string]interface{}{
		"_type":     "customer",
		"email":     customer.Email,
		"name":      customer.Name,
		"userId":    customer.UserID,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}
	if customer.PaymentCustomerID != "" {
		doc["paymentCustomerId"] = customer.PaymentCustomerID
	}

	resp, err := c.Mutate(ctx, []Mutation{{Create: doc}})
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("create customer returned no document id")
	}
	return resp.Results[0].ID, nil
}

// SetCustomerPaymentID backfills the payment-provider customer id on an
// existing customer document.
func (c *Client) SetCustomerPaymentID(ctx context.Context, customerID, paymentCustomerID string) error {
	_, err := c.Mutate(ctx, []Mutation{{
		Patch: &Patch{
			ID:  customerID,
			Set: map[string]interface{}{"paymentCustomerId": paymentCustomerID},
		},
	}})
	if err != nil {
		return fmt.Errorf("failed to set payment customer id: %w", err)
	}
	return nil
}
