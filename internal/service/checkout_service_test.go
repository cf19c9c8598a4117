package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/auth"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/payment"
	"github.com/jafarshop/storefront/pkg/errors"
)

type fakeProducts struct {
	products []domain.ProductSnapshot
	err      error
	calls    int
}

func (f *fakeProducts) ProductsByIDs(ctx context.Context, ids []string) ([]domain.ProductSnapshot, error) {
	f.calls++
	return f.products, f.err
}

type fakePayments struct {
	session     *payment.Session
	createErr   error
	retrieved   *payment.Session
	retrieveErr error

	createCalls int
	lastParams  payment.SessionParams
}

func (f *fakePayments) CreateSession(ctx context.Context, params payment.SessionParams) (*payment.Session, error) {
	f.createCalls++
	f.lastParams = params
	return f.session, f.createErr
}

func (f *fakePayments) RetrieveSession(ctx context.Context, sessionID string) (*payment.Session, error) {
	return f.retrieved, f.retrieveErr
}

type fakeCustomers struct {
	ids *CustomerIDs
	err error
}

func (f *fakeCustomers) GetOrCreateCustomer(ctx context.Context, email, name, userID string) (*CustomerIDs, error) {
	return f.ids, f.err
}

func testIdentity() *auth.Identity {
	return &auth.Identity{UserID: "user_1", Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}
}

func newTestCheckout(products *fakeProducts, payments *fakePayments, customers *fakeCustomers) *checkoutService {
	if customers.ids == nil && customers.err == nil {
		customers.ids = &CustomerIDs{PaymentCustomerID: "cus_1", CMSCustomerID: "doc_1"}
	}
	return NewCheckoutService(products, payments, customers, "https://shop.example.com", nil)
}

func TestCheckoutRequiresSignIn(t *testing.T) {
	products := &fakeProducts{}
	payments := &fakePayments{}
	svc := newTestCheckout(products, payments, &fakeCustomers{})

	result := svc.CreateCheckoutSession(context.Background(), nil, []domain.CartItem{
		{ProductID: "p1", Name: "Widget", Quantity: 1},
	})

	assert.False(t, result.Success)
	assert.Equal(t, "Please sign in to checkout", result.Error)
	assert.Zero(t, products.calls, "no CMS call for an unauthenticated shopper")
	assert.Zero(t, payments.createCalls, "no payment call for an unauthenticated shopper")
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	payments := &fakePayments{}
	svc := newTestCheckout(&fakeProducts{}, payments, &fakeCustomers{})

	result := svc.CreateCheckoutSession(context.Background(), testIdentity(), nil)

	assert.False(t, result.Success)
	assert.Equal(t, "Your cart is empty", result.Error)
	assert.Zero(t, payments.createCalls)
}

func TestCheckoutAccumulatesValidationErrors(t *testing.T) {
	products := &fakeProducts{products: []domain.ProductSnapshot{
		{ID: "p2", Title: "Lamp", Price: 40, Quantity: 0},
		{ID: "p3", Title: "Chair", Price: 90, Quantity: 2},
	}}
	payments := &fakePayments{}
	svc := newTestCheckout(products, payments, &fakeCustomers{})

	result := svc.CreateCheckoutSession(context.Background(), testIdentity(), []domain.CartItem{
		{ProductID: "p1", Name: "Vanished Table", Quantity: 1},
		{ProductID: "p2", Name: "Lamp", Quantity: 1},
		{ProductID: "p3", Name: "Chair", Quantity: 5},
	})

	assert.False(t, result.Success)
	assert.Equal(t,
		`"Vanished Table" is no longer available. "Lamp" is out of stock. Only 2 of "Chair" available`,
		result.Error,
	)
	assert.Zero(t, payments.createCalls, "no session may be created when any line fails")
}

func TestCheckoutPartialFailureBlocksWholeCart(t *testing.T) {
	products := &fakeProducts{products: []domain.ProductSnapshot{
		{ID: "p1", Title: "Widget", Price: 10, Quantity: 100},
		{ID: "p2", Title: "Lamp", Price: 40, Quantity: 0},
	}}
	payments := &fakePayments{}
	svc := newTestCheckout(products, payments, &fakeCustomers{})

	result := svc.CreateCheckoutSession(context.Background(), testIdentity(), []domain.CartItem{
		{ProductID: "p1", Name: "Widget", Quantity: 1},
		{ProductID: "p2", Name: "Lamp", Quantity: 1},
	})

	assert.False(t, result.Success)
	assert.Equal(t, `"Lamp" is out of stock`, result.Error)
	assert.Zero(t, payments.createCalls)
}

func TestCheckoutUsesSnapshotPricing(t *testing.T) {
	products := &fakeProducts{products: []domain.ProductSnapshot{
		{ID: "p1", Title: "Widget", Price: 19.99, Quantity: 10, Images: []string{"https://cdn/img.jpg"}},
	}}
	payments := &fakePayments{session: &payment.Session{ID: "cs_1", URL: "https://pay.example.com/cs_1"}}
	svc := newTestCheckout(products, payments, &fakeCustomers{})

	// Client-submitted price is tampered; it must be ignored
	result := svc.CreateCheckoutSession(context.Background(), testIdentity(), []domain.CartItem{
		{ProductID: "p1", Name: "Widget", Price: 0.01, Quantity: 2},
	})

	require.True(t, result.Success)
	assert.Equal(t, "https://pay.example.com/cs_1", result.URL)
	assert.Equal(t, "cs_1", result.SessionID)
	assert.Empty(t, result.Error)

	require.Equal(t, 1, payments.createCalls)
	params := payments.lastParams
	require.Len(t, params.LineItems, 1)
	assert.Equal(t, int64(1999), params.LineItems[0].UnitAmount)
	assert.Equal(t, "Widget", params.LineItems[0].Name)
	assert.Equal(t, 2, params.LineItems[0].Quantity)
	assert.Equal(t, "cus_1", params.CustomerID)
	assert.Equal(t, "https://shop.example.com/checkout/success?session_id={CHECKOUT_SESSION_ID}", params.SuccessURL)
	assert.Equal(t, "https://shop.example.com/checkout", params.CancelURL)

	assert.Equal(t, "user_1", params.Metadata["userId"])
	assert.Equal(t, "doc_1", params.Metadata["customerId"])

	var items []domain.OrderItem
	require.NoError(t, json.Unmarshal([]byte(params.Metadata["items"]), &items))
	require.Len(t, items, 1)
	assert.Equal(t, 19.99, items[0].Price, "metadata carries snapshot price, not cart price")
}

func TestCheckoutProductFetchFailureIsGeneric(t *testing.T) {
	products := &fakeProducts{err: fmt.Errorf("cms unreachable")}
	payments := &fakePayments{}
	svc := newTestCheckout(products, payments, &fakeCustomers{})

	result := svc.CreateCheckoutSession(context.Background(), testIdentity(), []domain.CartItem{
		{ProductID: "p1", Name: "Widget", Quantity: 1},
	})

	assert.False(t, result.Success)
	assert.Equal(t, "Something went wrong", result.Error)
	assert.Zero(t, payments.createCalls)
}

func TestCheckoutProviderFailureIsGeneric(t *testing.T) {
	products := &fakeProducts{products: []domain.ProductSnapshot{
		{ID: "p1", Title: "Widget", Price: 10, Quantity: 10},
	}}
	payments := &fakePayments{createErr: fmt.Errorf("provider down")}
	svc := newTestCheckout(products, payments, &fakeCustomers{})

	result := svc.CreateCheckoutSession(context.Background(), testIdentity(), []domain.CartItem{
		{ProductID: "p1", Name: "Widget", Quantity: 1},
	})

	assert.False(t, result.Success)
	assert.Equal(t, "Something went wrong", result.Error)
}

func TestCheckoutCustomerResolutionFailureIsGeneric(t *testing.T) {
	products := &fakeProducts{products: []domain.ProductSnapshot{
		{ID: "p1", Title: "Widget", Price: 10, Quantity: 10},
	}}
	payments := &fakePayments{}
	svc := newTestCheckout(products, payments, &fakeCustomers{err: fmt.Errorf("cms write failed")})

	result := svc.CreateCheckoutSession(context.Background(), testIdentity(), []domain.CartItem{
		{ProductID: "p1", Name: "Widget", Quantity: 1},
	})

	assert.False(t, result.Success)
	assert.Equal(t, "Something went wrong", result.Error)
	assert.Zero(t, payments.createCalls)
}

func TestGetCheckoutSessionRequiresSignIn(t *testing.T) {
	svc := newTestCheckout(&fakeProducts{}, &fakePayments{}, &fakeCustomers{})

	_, err := svc.GetCheckoutSession(context.Background(), nil, "cs_1")

	var unauth *errors.ErrUnauthorized
	assert.ErrorAs(t, err, &unauth)
}

func TestGetCheckoutSessionDeniesOtherUsers(t *testing.T) {
	payments := &fakePayments{retrieved: &payment.Session{
		ID:       "cs_1",
		Metadata: map[string]string{"userId": "someone_else"},
	}}
	svc := newTestCheckout(&fakeProducts{}, payments, &fakeCustomers{})

	_, err := svc.GetCheckoutSession(context.Background(), testIdentity(), "cs_1")

	var unauth *errors.ErrUnauthorized
	assert.ErrorAs(t, err, &unauth)
}

func TestGetCheckoutSessionReturnsSummary(t *testing.T) {
	payments := &fakePayments{retrieved: &payment.Session{
		ID:            "cs_1",
		AmountTotal:   3998,
		PaymentStatus: "paid",
		Metadata:      map[string]string{"userId": "user_1"},
		CustomerDetails: &payment.CustomerDetails{
			Email: "jane@example.com",
			Name:  "Jane Doe",
		},
	}}
	svc := newTestCheckout(&fakeProducts{}, payments, &fakeCustomers{})

	summary, err := svc.GetCheckoutSession(context.Background(), testIdentity(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, "cs_1", summary.ID)
	assert.Equal(t, int64(3998), summary.AmountTotal)
	assert.Equal(t, "paid", summary.PaymentStatus)
	assert.Equal(t, "jane@example.com", summary.Email)
	assert.Equal(t, "Jane Doe", summary.Name)
}

func TestGetCheckoutSessionPropagatesRetrieveError(t *testing.T) {
	payments := &fakePayments{retrieveErr: fmt.Errorf("no such session")}
	svc := newTestCheckout(&fakeProducts{}, payments, &fakeCustomers{})

	_, err := svc.GetCheckoutSession(context.Background(), testIdentity(), "cs_missing")
	assert.Error(t, err)
}
