package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/config"
)

func newPaymentServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.PaymentConfig{
		BaseURL:   server.URL,
		SecretKey: "sk_pay",
		Currency:  "inr",
	}, nil)
}

func TestCreateSessionEncodesLineItems(t *testing.T) {
	var form url.Values
	client := newPaymentServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_pay", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"id":"cs_1","url":"https://pay.example.com/cs_1"}`))
	})

	session, err := client.CreateSession(context.Background(), SessionParams{
		CustomerID: "cus_1",
		LineItems: []LineItem{{
			Name:       "Widget",
			ProductID:  "p1",
			UnitAmount: 1999,
			Quantity:   2,
			Images:     []string{"https://cdn/img.jpg"},
		}},
		Metadata:   map[string]string{"userId": "user_1"},
		SuccessURL: "https://shop.example.com/success",
		CancelURL:  "https://shop.example.com/cancel",
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://pay.example.com/cs_1", session.URL)

	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, "cus_1", form.Get("customer"))
	assert.Equal(t, "inr", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "Widget", form.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "p1", form.Get("line_items[0][price_data][product_data][metadata][productId]"))
	assert.Equal(t, "1999", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "user_1", form.Get("metadata[userId]"))
	assert.Equal(t, "https://shop.example.com/success", form.Get("success_url"))
}

func TestCreateSessionSurfacesProviderError(t *testing.T) {
	client := newPaymentServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined.","type":"card_error"}}`))
	})

	_, err := client.CreateSession(context.Background(), SessionParams{CustomerID: "cus_1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestRetrieveSessionExpandsDetails(t *testing.T) {
	client := newPaymentServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
		assert.ElementsMatch(t, []string{"line_items", "customer_details"}, r.URL.Query()["expand[]"])
		w.Write([]byte(`{
			"id": "cs_1",
			"amount_total": 3998,
			"payment_status": "paid",
			"metadata": {"userId": "user_1"},
			"customer_details": {"email": "jane@example.com", "name": "Jane Doe"},
			"line_items": {"data": [{"description": "Widget", "quantity": 2, "amount_total": 3998}]}
		}`))
	})

	session, err := client.RetrieveSession(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, int64(3998), session.AmountTotal)
	assert.Equal(t, "paid", session.PaymentStatus)
	require.NotNil(t, session.CustomerDetails)
	assert.Equal(t, "Jane Doe", session.CustomerDetails.Name)

	lines := session.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Widget", lines[0].Description)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCreateCustomerParsesID(t *testing.T) {
	client := newPaymentServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "jane@example.com", r.PostForm.Get("email"))
		assert.Equal(t, "user_1", r.PostForm.Get("metadata[userId]"))
		w.Write([]byte(`{"id":"cus_1"}`))
	})

	id, err := client.CreateCustomer(context.Background(), "jane@example.com", "Jane Doe", "user_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", id)
}

func TestClientRequiresSecretKey(t *testing.T) {
	client := NewClient(config.PaymentConfig{BaseURL: "https://api.example.com"}, nil)

	_, err := client.RetrieveSession(context.Background(), "cs_1")
	assert.Error(t, err)
}
