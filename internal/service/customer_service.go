package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
)

// CustomerIDs pairs the payment-provider customer id with the CMS customer
// document id for one shopper.
type CustomerIDs struct {
	PaymentCustomerID string
	CMSCustomerID     string
}

// CustomerStore is the CMS surface for customer documents
type CustomerStore interface {
	CustomerByUserID(ctx context.Context, userID string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer *domain.Customer) (string, error)
	SetCustomerPaymentID(ctx context.Context, customerID, paymentCustomerID string) error
}

// BillingCustomerCreator is the payment provider surface for customer records
type BillingCustomerCreator interface {
	CreateCustomer(ctx context.Context, email, name, userID string) (string, error)
}

type customerService struct {
	store    CustomerStore
	payments BillingCustomerCreator
	logger   *zap.Logger
}

// NewCustomerService creates a new customer resolution service
func NewCustomerService(store CustomerStore, payments BillingCustomerCreator, logger *zap.Logger) *customerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &customerService{
		store:    store,
		payments: payments,
		logger:   logger,
	}
}

// GetOrCreateCustomer resolves the billing customer for an authenticated
// shopper, creating the payment-provider customer and the CMS customer
// document on first checkout. A CMS document that predates the payment
// customer gets its payment id backfilled.
func (s *customerService) GetOrCreateCustomer(ctx context.Context, email, name, userID string) (*CustomerIDs, error) {
	existing, err := s.store.CustomerByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	if existing != nil {
		if existing.PaymentCustomerID != "" {
			return &CustomerIDs{
				PaymentCustomerID: existing.PaymentCustomerID,
				CMSCustomerID:     existing.ID,
			}, nil
		}

		paymentCustomerID, err := s.payments.CreateCustomer(ctx, email, name, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to create payment customer: %w", err)
		}
		if err := s.store.SetCustomerPaymentID(ctx, existing.ID, paymentCustomerID); err != nil {
			// The payment customer exists; checkout can proceed with it even
			// when the backfill write fails.
			s.logger.Warn("Failed to backfill payment customer id",
				zap.String("customer_id", existing.ID),
				zap.Error(err),
			)
		}
		return &CustomerIDs{
			PaymentCustomerID: paymentCustomerID,
			CMSCustomerID:     existing.ID,
		}, nil
	}

	paymentCustomerID, err := s.payments.CreateCustomer(ctx, email, name, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment customer: %w", err)
	}

	cmsCustomerID, err := s.store.CreateCustomer(ctx, &domain.Customer{
		Email:             email,
		Name:              name,
		UserID:            userID,
		PaymentCustomerID: paymentCustomerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create customer document: %w", err)
	}

	return &CustomerIDs{
		PaymentCustomerID: paymentCustomerID,
		CMSCustomerID:     cmsCustomerID,
	}, nil
}
