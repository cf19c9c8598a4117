package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/auth"
)

const IdentityContextKey = "identity"

// SessionVerifier verifies a shopper session token with the identity provider
type SessionVerifier interface {
	VerifySession(ctx context.Context, sessionToken string) (*auth.Identity, error)
}

// AuthMiddleware authenticates requests using a bearer session token. Routes
// behind it require a signed-in shopper.
func AuthMiddleware(verifier SessionVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := verifyRequest(c, verifier, logger)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			c.Abort()
			return
		}
		if identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller's identity when a session token
// is present but lets unauthenticated requests through. Checkout uses it so
// the validator can answer "Please sign in to checkout" as a result value
// instead of an HTTP error.
func OptionalAuthMiddleware(verifier SessionVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, ok := verifyRequest(c, verifier, logger); ok && identity != nil {
			c.Set(IdentityContextKey, identity)
		}
		c.Next()
	}
}

// verifyRequest returns (nil, true) when no token was supplied and
// (nil, false) when a token was supplied but rejected.
func verifyRequest(c *gin.Context, verifier SessionVerifier, logger *zap.Logger) (*auth.Identity, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, true
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return nil, false
	}

	identity, err := verifier.VerifySession(c.Request.Context(), token)
	if err != nil {
		logger.Warn("Failed to verify session token", zap.Error(err))
		return nil, false
	}
	return identity, true
}

// GetIdentityFromContext retrieves the verified identity from the Gin context
func GetIdentityFromContext(c *gin.Context) (*auth.Identity, bool) {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return nil, false
	}

	identity, ok := value.(*auth.Identity)
	return identity, ok
}
