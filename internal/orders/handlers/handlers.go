package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"teka/internal/common/httpx"
	"teka/internal/common/identity"
	"teka/internal/common/validation"
	"teka/internal/domain"
	"teka/internal/orders/service"
)

type OrderHandler struct {
	orders service.OrderServiceInterface
	v      *validatorv10.Validate
}

func NewOrderHandler(orders service.OrderServiceInterface, v *validatorv10.Validate) *OrderHandler {
	return &OrderHandler{orders: orders, v: v}
}

func (h *OrderHandler) Register(r gin.IRouter) {
	r.POST("/orders", h.create)
	r.GET("/orders", h.list)
	r.GET("/orders/:id", h.get)
	r.POST("/orders/:id/status", h.updateStatus)
}

func (h *OrderHandler) create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	order, err := h.orders.Create(c.Request.Context(), identity.FromContext(c), req)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderToResponse(order))
}

func (h *OrderHandler) list(c *gin.Context) {
	var status *domain.OrderStatus
	if raw := c.Query("status"); raw != "" {
		st, err := domain.ParseOrderStatus(raw)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		status = &st
	}
	orders, err := h.orders.List(c.Request.Context(), identity.FromContext(c), status)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderToResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *OrderHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid order id"))
		return
	}
	order, err := h.orders.Get(c.Request.Context(), identity.FromContext(c), id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, orderToResponse(order))
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) updateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid order id"))
		return
	}
	var req updateStatusRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	order, err := h.orders.ApplyTransition(c.Request.Context(), identity.FromContext(c), id, req.Status)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, orderToResponse(order))
}
