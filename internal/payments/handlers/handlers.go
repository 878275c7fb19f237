package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"teka/internal/common/httpx"
	"teka/internal/common/identity"
	"teka/internal/domain"
	"teka/internal/payments/service"
)

type PaymentHandler struct {
	payments service.PaymentServiceInterface
}

func NewPaymentHandler(payments service.PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Register wires the identity-guarded payment routes.
func (h *PaymentHandler) Register(r gin.IRouter) {
	r.POST("/payments/connect", h.startOnboarding)
	r.POST("/payments/connect/finish", h.finishOnboarding)
	r.POST("/payments/intents", h.createIntent)
}

// RegisterWebhook wires the processor callback. It sits outside the identity
// middleware; the payload signature is the only authentication.
func (h *PaymentHandler) RegisterWebhook(r gin.IRouter) {
	r.POST("/webhooks/stripe", h.webhook)
}

func (h *PaymentHandler) startOnboarding(c *gin.Context) {
	url, err := h.payments.StartOnboarding(c.Request.Context(), identity.FromContext(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"onboarding_url": url})
}

func (h *PaymentHandler) finishOnboarding(c *gin.Context) {
	status, err := h.payments.FinishOnboarding(c.Request.Context(), identity.FromContext(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type createIntentRequest struct {
	OrderID string `json:"order_id"`
}

func (h *PaymentHandler) createIntent(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "detail": err.Error()})
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid order id"))
		return
	}
	resp, err := h.payments.CreateIntent(c.Request.Context(), identity.FromContext(c), orderID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PaymentHandler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_payload"})
		return
	}
	if err := h.payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
