package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/auth"
	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
)

// CheckoutService validates a cart and drives the payment provider
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, identity *auth.Identity, items []domain.CartItem) domain.CheckoutResult
	GetCheckoutSession(ctx context.Context, identity *auth.Identity, sessionID string) (*domain.SessionSummary, error)
}

// HandleCreateCheckout handles POST /v1/checkout. The route sits behind
// optional auth so a signed-out shopper gets a result value, not a 401.
// Validation failures and provider faults are reported in the body with
// status 200; the success flag is the contract.
func HandleCreateCheckout(
	checkout CheckoutService,
	carts *cart.Manager,
	repos *repository.Repositories,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := middleware.GetIdentityFromContext(c)

		key, requestHash, existing := middleware.GetIdempotencyInfo(c)
		if existing != nil {
			if identity == nil || existing.UserID != identity.UserID {
				c.JSON(http.StatusConflict, gin.H{
					"error": "idempotency key conflict: key belongs to another user",
				})
				return
			}
			logger.Info("Replaying stored checkout session",
				zap.String("key", existing.Key),
				zap.String("session_id", existing.SessionID),
			)
			c.JSON(http.StatusOK, domain.CheckoutResult{Success: true, URL: existing.SessionURL})
			return
		}

		store := carts.Get(c.Request.Context(), cartSessionID(c))
		result := checkout.CreateCheckoutSession(c.Request.Context(), identity, store.Items())

		if result.Success && key != "" {
			record := &domain.IdempotencyKey{
				Key:         key,
				UserID:      identity.UserID,
				SessionID:   result.SessionID,
				SessionURL:  result.URL,
				RequestHash: requestHash,
			}
			if err := repos.IdempotencyKey.Create(c.Request.Context(), record); err != nil {
				// The session already exists; failing the request now would
				// strand the shopper. Log and move on.
				logger.Warn("Failed to store idempotency key", zap.String("key", key), zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, result)
	}
}

// HandleGetCheckoutSession handles GET /v1/checkout/sessions/:id. Any
// failure, including a lookup of another shopper's session, collapses to
// success=false without detail.
func HandleGetCheckoutSession(checkout CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := middleware.GetIdentityFromContext(c)

		summary, err := checkout.GetCheckoutSession(c.Request.Context(), identity, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "session": summary})
	}
}
