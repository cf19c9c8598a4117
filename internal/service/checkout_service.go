package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/auth"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/payment"
	"github.com/jafarshop/storefront/pkg/errors"
)

const (
	msgSignInRequired = "Please sign in to checkout"
	msgEmptyCart      = "Your cart is empty"
	msgGenericFailure = "Something went wrong"
)

// SessionProvider is the payment provider surface checkout depends on
type SessionProvider interface {
	CreateSession(ctx context.Context, params payment.SessionParams) (*payment.Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*payment.Session, error)
}

// CustomerResolver resolves or creates the billing customer for a shopper
type CustomerResolver interface {
	GetOrCreateCustomer(ctx context.Context, email, name, userID string) (*CustomerIDs, error)
}

type checkoutService struct {
	products  ProductFetcher
	payments  SessionProvider
	customers CustomerResolver
	baseURL   string
	logger    *zap.Logger
}

// NewCheckoutService creates a new checkout service. baseURL is the public
// storefront URL used to build the success/cancel redirect targets.
func NewCheckoutService(
	products ProductFetcher,
	payments SessionProvider,
	customers CustomerResolver,
	baseURL string,
	logger *zap.Logger,
) *checkoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &checkoutService{
		products:  products,
		payments:  payments,
		customers: customers,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// CreateCheckoutSession authoritatively validates a submitted cart against
// current CMS data and, only if every line passes, creates a payment session
// and returns its redirect URL. Line-item prices and titles always come from
// the CMS snapshot, never from the client-submitted cart, so a tampered
// price can never reach the payment provider. Every failure path returns a
// result value; nothing here panics or propagates provider faults.
func (s *checkoutService) CreateCheckoutSession(
	ctx context.Context,
	identity *auth.Identity,
	items []domain.CartItem,
) domain.CheckoutResult {
	if identity == nil {
		return domain.CheckoutResult{Success: false, Error: msgSignInRequired}
	}
	if len(items) == 0 {
		return domain.CheckoutResult{Success: false, Error: msgEmptyCart}
	}

	// Fetch authoritative snapshots in one batched call
	ids := distinctProductIDs(items)
	products, err := s.products.ProductsByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Checkout product fetch failed", zap.Error(err))
		return domain.CheckoutResult{Success: false, Error: msgGenericFailure}
	}

	byID := make(map[string]domain.ProductSnapshot, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Validate every line, accumulating errors so the shopper can fix the
	// whole cart in one pass.
	var validationErrors []string
	type validatedLine struct {
		product  domain.ProductSnapshot
		quantity int
	}
	validated := make([]validatedLine, 0, len(items))

	for _, item := range items {
		product, found := byID[item.ProductID]
		if !found {
			validationErrors = append(validationErrors, fmt.Sprintf("%q is no longer available", item.Name))
			continue
		}
		if product.Quantity == 0 {
			validationErrors = append(validationErrors, fmt.Sprintf("%q is out of stock", product.Title))
			continue
		}
		if item.Quantity > product.Quantity {
			validationErrors = append(validationErrors, fmt.Sprintf("Only %d of %q available", product.Quantity, product.Title))
			continue
		}
		validated = append(validated, validatedLine{product: product, quantity: item.Quantity})
	}

	if len(validationErrors) > 0 {
		// No payment session is created when any line fails; partial
		// checkout is never allowed.
		return domain.CheckoutResult{Success: false, Error: strings.Join(validationErrors, ". ")}
	}

	// Build line items from the snapshot, in minor currency units
	lineItems := make([]payment.LineItem, 0, len(validated))
	for _, line := range validated {
		lineItems = append(lineItems, payment.LineItem{
			Name:       line.product.Title,
			Images:     line.product.Images,
			ProductID:  line.product.ID,
			UnitAmount: int64(math.Round(line.product.Price * 100)),
			Quantity:   line.quantity,
		})
	}

	customer, err := s.customers.GetOrCreateCustomer(ctx, identity.Email, identity.Name(), identity.UserID)
	if err != nil {
		s.logger.Error("Checkout customer resolution failed", zap.String("user_id", identity.UserID), zap.Error(err))
		return domain.CheckoutResult{Success: false, Error: msgGenericFailure}
	}

	// Order lines ride along as metadata so the payment webhook can record
	// the order without another product fetch.
	orderItems := make([]domain.OrderItem, 0, len(validated))
	for _, line := range validated {
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: line.product.ID,
			Title:     line.product.Title,
			Price:     line.product.Price,
			Quantity:  line.quantity,
		})
	}
	itemsJSON, err := json.Marshal(orderItems)
	if err != nil {
		s.logger.Error("Failed to encode order items", zap.Error(err))
		return domain.CheckoutResult{Success: false, Error: msgGenericFailure}
	}

	session, err := s.payments.CreateSession(ctx, payment.SessionParams{
		CustomerID: customer.PaymentCustomerID,
		LineItems:  lineItems,
		Metadata: map[string]string{
			"userId":     identity.UserID,
			"customerId": customer.CMSCustomerID,
			"items":      string(itemsJSON),
		},
		SuccessURL: s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.baseURL + "/checkout",
	})
	if err != nil {
		s.logger.Error("Payment session creation failed", zap.String("user_id", identity.UserID), zap.Error(err))
		return domain.CheckoutResult{Success: false, Error: msgGenericFailure}
	}

	return domain.CheckoutResult{Success: true, URL: session.URL, SessionID: session.ID}
}

// GetCheckoutSession retrieves a previously created session, but only when
// the session's recorded user matches the caller. Any failure, including a
// cross-account lookup, is reported without revealing session contents.
func (s *checkoutService) GetCheckoutSession(
	ctx context.Context,
	identity *auth.Identity,
	sessionID string,
) (*domain.SessionSummary, error) {
	if identity == nil {
		return nil, &errors.ErrUnauthorized{}
	}

	session, err := s.payments.RetrieveSession(ctx, sessionID)
	if err != nil {
		s.logger.Warn("Session retrieval failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	if session.Metadata["userId"] != identity.UserID {
		s.logger.Warn("Session user mismatch",
			zap.String("session_id", sessionID),
			zap.String("user_id", identity.UserID),
		)
		return nil, &errors.ErrUnauthorized{}
	}

	summary := &domain.SessionSummary{
		ID:            session.ID,
		AmountTotal:   session.AmountTotal,
		PaymentStatus: session.PaymentStatus,
	}
	if session.CustomerDetails != nil {
		summary.Email = session.CustomerDetails.Email
		summary.Name = session.CustomerDetails.Name
	}
	for _, line := range session.Lines() {
		summary.Items = append(summary.Items, domain.SessionLineItem{
			Name:     line.Description,
			Quantity: line.Quantity,
			Amount:   line.AmountTotal,
		})
	}
	return summary, nil
}
