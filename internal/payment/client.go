package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
)

// LineItem is one priced line submitted on session creation. UnitAmount is in
// the currency's minor unit (paise/cents).
type LineItem struct {
	Name       string
	Images     []string
	ProductID  string
	UnitAmount int64
	Quantity   int
}

// SessionParams are the inputs to checkout session creation
type SessionParams struct {
	CustomerID string
	LineItems  []LineItem
	Metadata   map[string]string
	SuccessURL string
	CancelURL  string
}

// CustomerDetails is the billing contact captured on a completed session
type CustomerDetails struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SessionLine is one line item on a retrieved session
type SessionLine struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	AmountTotal int64  `json:"amount_total"`
}

type lineItemList struct {
	Data []SessionLine `json:"data"`
}

// Session is a provider checkout session
type Session struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	AmountTotal     int64             `json:"amount_total"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentIntentID string            `json:"payment_intent"`
	Metadata        map[string]string `json:"metadata"`
	CustomerDetails *CustomerDetails  `json:"customer_details"`
	LineItems       *lineItemList     `json:"line_items"`
}

// Lines returns the retrieved line items, or nil when not expanded
func (s *Session) Lines() []SessionLine {
	if s.LineItems == nil {
		return nil
	}
	return s.LineItems.Data
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client calls the payment provider's form-encoded REST API
type Client struct {
	baseURL    string
	secretKey  string
	currency   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a payment provider HTTP client
func NewClient(cfg config.PaymentConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		secretKey:  cfg.SecretKey,
		currency:   cfg.Currency,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// CreateCustomer creates a billing customer and returns its id
func (c *Client) CreateCustomer(ctx context.Context, email, name, userID string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)
	form.Set("metadata[userId]", userID)

	var customer struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/customers", form, &customer); err != nil {
		return "", err
	}
	return customer.ID, nil
}

// CreateSession creates a hosted checkout session and returns it with the
// redirect URL populated.
func (c *Client) CreateSession(ctx context.Context, params SessionParams) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("customer", params.CustomerID)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", c.currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][product_data][metadata][productId]", item.ProductID)
		for j, image := range item.Images {
			form.Set(fmt.Sprintf("%s[price_data][product_data][images][%d]", prefix, j), image)
		}
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RetrieveSession fetches a session by id with line items and customer
// details expanded.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	path := "/v1/checkout/sessions/" + url.PathEscape(sessionID) +
		"?expand[]=line_items&expand[]=customer_details"

	var session Session
	if err := c.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	if c.secretKey == "" {
		return fmt.Errorf("payment client not configured: secret key required")
	}

	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			c.logger.Warn("Payment provider error",
				zap.Int("status", resp.StatusCode),
				zap.String("type", apiErr.Error.Type),
				zap.String("message", apiErr.Error.Message),
			)
			return fmt.Errorf("payment provider error: %s", apiErr.Error.Message)
		}
		return fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	return nil
}
