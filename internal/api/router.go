package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/handlers"
	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/cms"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/service"
)

// Dependencies carries everything the route handlers need
type Dependencies struct {
	Config      *config.Config
	Repos       *repository.Repositories
	CMS         *cms.Client
	Verifier    middleware.SessionVerifier
	Carts       *cart.Manager
	Reconcilers *service.ReconcilerRegistry
	Checkout    handlers.CheckoutService
	Logger      *zap.Logger
}

// NewRouter creates and configures the Gin router
func NewRouter(deps Dependencies) *gin.Engine {
	cfg, logger := deps.Config, deps.Logger

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Storefront API",
			"docs":    "https://api.jafarshop.com/health",
			"endpoints": []string{
				"GET /health",
				"POST /webhooks/payment",
				"GET /v1/products",
				"GET /v1/products/:slug",
				"GET /v1/cart",
				"POST /v1/cart/items",
				"GET /v1/cart/stock",
				"POST /v1/checkout",
				"GET /v1/checkout/sessions/:id",
				"GET /v1/orders",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Payment webhook: completed sessions become CMS orders with stock decrements
	router.POST("/webhooks/payment", handlers.HandlePaymentWebhook(deps.CMS, cfg.PaymentWebhookSecret, logger))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Catalog routes (public)
		v1.GET("/products", handlers.HandleListProducts(deps.CMS, logger))
		v1.GET("/products/:slug", handlers.HandleGetProduct(deps.CMS, logger))

		// Cart routes (public, keyed by cart session cookie)
		cartRoutes := v1.Group("/cart")
		{
			cartRoutes.GET("", handlers.HandleGetCart(deps.Carts, logger))
			cartRoutes.POST("/items", handlers.HandleAddCartItem(deps.Carts, logger))
			cartRoutes.PATCH("/items/:productId", handlers.HandleUpdateCartItem(deps.Carts, logger))
			cartRoutes.DELETE("/items/:productId", handlers.HandleRemoveCartItem(deps.Carts, logger))
			cartRoutes.GET("/stock", handlers.HandleGetCartStock(deps.Reconcilers, logger))
			cartRoutes.POST("/stock/refresh", handlers.HandleRefreshCartStock(deps.Reconcilers, logger))
		}

		// Checkout routes: optional auth so a signed-out shopper gets a
		// result value instead of a 401
		checkoutRoutes := v1.Group("/checkout")
		checkoutRoutes.Use(middleware.OptionalAuthMiddleware(deps.Verifier, logger))
		checkoutRoutes.Use(middleware.IdempotencyMiddleware(deps.Repos, logger))
		{
			checkoutRoutes.POST("", handlers.HandleCreateCheckout(deps.Checkout, deps.Carts, deps.Repos, logger))
			checkoutRoutes.GET("/sessions/:id", handlers.HandleGetCheckoutSession(deps.Checkout, logger))
		}

		// Order history (requires authentication)
		orderRoutes := v1.Group("/orders")
		orderRoutes.Use(middleware.AuthMiddleware(deps.Verifier, logger))
		{
			orderRoutes.GET("", handlers.HandleListOrders(deps.CMS, logger))
			orderRoutes.GET("/:orderId", handlers.HandleGetOrder(deps.CMS, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
