package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/service"
)

const (
	cartSessionCookie = "cart_session"
	cartSessionHeader = "X-Cart-Session"
	cartCookieMaxAge  = 30 * 24 * 60 * 60
)

// cartSessionID resolves the browsing session id from the request, minting a
// new one (and setting the cookie) for first-time visitors.
func cartSessionID(c *gin.Context) string {
	if id := c.GetHeader(cartSessionHeader); id != "" {
		return id
	}
	if id, err := c.Cookie(cartSessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.New().String()
	c.SetCookie(cartSessionCookie, id, cartCookieMaxAge, "/", "", false, true)
	return id
}

// AddCartItemRequest is the add-to-cart payload
type AddCartItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"min=0"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Image     *string `json:"image,omitempty"`
}

// UpdateCartItemRequest is the quantity-change payload
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

func cartResponse(store *cart.Store) gin.H {
	return gin.H{
		"items":      store.Items(),
		"totalItems": store.TotalItems(),
		"totalPrice": store.TotalPrice(),
	}
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(carts *cart.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := carts.Get(c.Request.Context(), cartSessionID(c))
		c.JSON(http.StatusOK, cartResponse(store))
	}
}

// HandleAddCartItem handles POST /v1/cart/items
func HandleAddCartItem(carts *cart.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		store := carts.Get(c.Request.Context(), cartSessionID(c))
		store.AddItem(domain.CartItem{
			ProductID: req.ProductID,
			Name:      req.Name,
			Price:     req.Price,
			Quantity:  req.Quantity,
			Image:     req.Image,
		})

		c.JSON(http.StatusOK, cartResponse(store))
	}
}

// HandleUpdateCartItem handles PATCH /v1/cart/items/:productId.
// Quantity zero removes the line.
func HandleUpdateCartItem(carts *cart.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		store := carts.Get(c.Request.Context(), cartSessionID(c))
		store.UpdateQuantity(c.Param("productId"), req.Quantity)

		c.JSON(http.StatusOK, cartResponse(store))
	}
}

// HandleRemoveCartItem handles DELETE /v1/cart/items/:productId
func HandleRemoveCartItem(carts *cart.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := carts.Get(c.Request.Context(), cartSessionID(c))
		store.RemoveItem(c.Param("productId"))

		c.JSON(http.StatusOK, cartResponse(store))
	}
}

// HandleGetCartStock handles GET /v1/cart/stock. The response gates the
// checkout call-to-action: disabled while loading or when any line has a
// stock issue.
func HandleGetCartStock(reconcilers *service.ReconcilerRegistry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := reconcilers.For(c.Request.Context(), cartSessionID(c))
		c.JSON(http.StatusOK, r.Snapshot())
	}
}

// HandleRefreshCartStock handles POST /v1/cart/stock/refresh
func HandleRefreshCartStock(reconcilers *service.ReconcilerRegistry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := reconcilers.For(c.Request.Context(), cartSessionID(c))
		r.Refetch()
		c.JSON(http.StatusAccepted, gin.H{"status": "refreshing"})
	}
}
