package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/cms"
)

// HandleListOrders handles GET /v1/orders for the signed-in shopper
func HandleListOrders(cmsClient *cms.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.GetIdentityFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		orders, err := cmsClient.OrdersByUserID(c.Request.Context(), identity.UserID)
		if err != nil {
			logger.Error("Failed to list orders", zap.String("user_id", identity.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": orders,
			"meta": gin.H{"count": len(orders)},
		})
	}
}

// HandleGetOrder handles GET /v1/orders/:orderId. Shoppers can only read
// their own orders.
func HandleGetOrder(cmsClient *cms.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.GetIdentityFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		order, err := cmsClient.OrderByOrderID(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			logger.Error("Failed to get order", zap.String("order_id", c.Param("orderId")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if order == nil || order.UserID != identity.UserID {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}
