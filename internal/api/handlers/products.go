package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cms"
	"github.com/jafarshop/storefront/pkg/errors"
)

// HandleListProducts handles GET /v1/products.
// Supported query params: search, category, min_price+max_price, featured,
// sort (newest|price_asc|price_desc), page+limit.
func HandleListProducts(cmsClient *cms.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := cms.ListOptions{
			Search:   c.Query("search"),
			Category: c.Query("category"),
			Featured: c.Query("featured") == "true",
			Sort:     cms.ProductSort(c.DefaultQuery("sort", string(cms.SortNewest))),
		}

		if minStr, maxStr := c.Query("min_price"), c.Query("max_price"); minStr != "" && maxStr != "" {
			minPrice, errMin := strconv.ParseFloat(minStr, 64)
			maxPrice, errMax := strconv.ParseFloat(maxStr, 64)
			if errMin != nil || errMax != nil || minPrice < 0 || maxPrice < minPrice {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price range"})
				return
			}
			opts.MinPrice = &minPrice
			opts.MaxPrice = &maxPrice
		}

		if pageStr := c.Query("page"); pageStr != "" {
			page, err := strconv.Atoi(pageStr)
			if err != nil || page < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
				return
			}
			limit := 24
			if l := c.Query("limit"); l != "" {
				if n, err := strconv.Atoi(l); err == nil && n >= 1 && n <= 100 {
					limit = n
				}
			}
			opts.Start = (page - 1) * limit
			opts.End = opts.Start + limit
		}

		products, err := cmsClient.ListProducts(c.Request.Context(), opts)
		if err != nil {
			logger.Error("Failed to list products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": products,
			"meta": gin.H{"count": len(products)},
		})
	}
}

// HandleGetProduct handles GET /v1/products/:slug
func HandleGetProduct(cmsClient *cms.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		product, err := cmsClient.ProductBySlug(c.Request.Context(), slug)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			logger.Error("Failed to get product", zap.String("slug", slug), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, product)
	}
}
