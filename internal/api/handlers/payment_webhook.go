package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cms"
	"github.com/jafarshop/storefront/internal/domain"
)

const PaymentSignatureHeader = "X-Payment-Signature"

type paymentEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID              string            `json:"id"`
			AmountTotal     int64             `json:"amount_total"`
			PaymentIntentID string            `json:"payment_intent"`
			PaymentStatus   string            `json:"payment_status"`
			Metadata        map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// verifyPaymentHMAC checks the webhook signature against the shared secret.
// The signature is a base64-encoded HMAC-SHA256 of the raw request body.
func verifyPaymentHMAC(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandlePaymentWebhook handles POST /webhooks/payment. On a completed
// checkout session it records the order in the CMS and decrements stock,
// using the line items the checkout flow stashed in session metadata. The
// payment session id doubles as the order id, so a redelivered event is
// acknowledged without creating a second order.
func HandlePaymentWebhook(cmsClient *cms.Client, webhookSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		if !verifyPaymentHMAC(body, c.GetHeader(PaymentSignatureHeader), webhookSecret) {
			logger.Warn("Rejected webhook with invalid signature")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		var event paymentEvent
		if err := json.Unmarshal(body, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		if event.Type != "checkout.session.completed" {
			// Acknowledge unrelated events so the provider stops retrying
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		session := event.Data.Object

		existing, err := cmsClient.OrderByOrderID(c.Request.Context(), session.ID)
		if err != nil {
			logger.Error("Webhook order lookup failed", zap.String("session_id", session.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if existing != nil {
			logger.Info("Webhook redelivery for recorded order", zap.String("session_id", session.ID))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		var items []domain.OrderItem
		if err := json.Unmarshal([]byte(session.Metadata["items"]), &items); err != nil || len(items) == 0 {
			logger.Error("Webhook session has no usable line items", zap.String("session_id", session.ID), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session metadata"})
			return
		}

		var subtotal float64
		for _, item := range items {
			subtotal += item.Price * float64(item.Quantity)
		}

		order := &domain.Order{
			OrderID:         session.ID,
			UserID:          session.Metadata["userId"],
			CustomerRef:     session.Metadata["customerId"],
			Items:           items,
			Subtotal:        subtotal,
			TotalAmount:     float64(session.AmountTotal) / 100,
			PaymentStatus:   domain.PaymentStatusPaid,
			PaymentIntentID: session.PaymentIntentID,
			Status:          domain.OrderStatusPending,
		}

		docID, err := cmsClient.CreateOrder(c.Request.Context(), order)
		if err != nil {
			// Non-2xx makes the provider redeliver; the order id dedup above
			// keeps the retry safe.
			logger.Error("Failed to record order", zap.String("session_id", session.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		logger.Info("Order recorded",
			zap.String("session_id", session.ID),
			zap.String("order_doc_id", docID),
			zap.String("user_id", order.UserID),
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
