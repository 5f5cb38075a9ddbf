// internal/interfaces/http/handlers/webhook.go
package handlers

import (
	"io"
	"net/http"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/order"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/payment"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// WebhookHandler receives payment-provider webhooks
type WebhookHandler struct {
	paymentService *payment.Service
	orderService   *order.Service
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(paymentService *payment.Service, orderService *order.Service) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		orderService:   orderService,
	}
}

// HandleCheckoutWebhook handles POST /webhook-checkout. The signature
// is verified against the raw body exactly as received; any decoding
// before that point would break it.
func (h *WebhookHandler) HandleCheckoutWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "failed to read request body"})
		return
	}

	event, err := h.paymentService.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		logrus.WithError(err).Warn("Webhook signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid signature"})
		return
	}

	comp, relevant, err := h.paymentService.ParseCheckoutSession(event)
	if err != nil {
		logrus.WithError(err).WithField("event_id", event.ID).Error("Failed to parse checkout event")
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "malformed event payload"})
		return
	}
	if !relevant {
		// Other event types are acknowledged so the provider stops retrying
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if _, err := h.orderService.CreateOrderFromCheckout(comp); err != nil {
		logrus.WithError(err).WithField("event_id", event.ID).Error("Failed to fulfill checkout")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
