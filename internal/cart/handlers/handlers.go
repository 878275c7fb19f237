package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"teka/internal/cart/service"
	"teka/internal/common/httpx"
	"teka/internal/common/identity"
	"teka/internal/common/validation"
	"teka/internal/domain"
)

type CartHandler struct {
	cart service.CartServiceInterface
	v    *validatorv10.Validate
}

func NewCartHandler(cart service.CartServiceInterface, v *validatorv10.Validate) *CartHandler {
	return &CartHandler{cart: cart, v: v}
}

func (h *CartHandler) Register(r gin.IRouter) {
	r.GET("/cart", h.get)
	r.POST("/cart/items", h.addItem)
	r.PUT("/cart/items/:id", h.updateItem)
	r.DELETE("/cart/items/:id", h.removeItem)
	r.DELETE("/cart", h.clear)
	r.POST("/cart/validate", h.validate)
}

func (h *CartHandler) get(c *gin.Context) {
	cart := h.cart.Get(identity.FromContext(c))
	c.JSON(http.StatusOK, cartToResponse(cart))
}

type addItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

func (h *CartHandler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	id, _ := uuid.Parse(req.MenuItemID)
	cart, err := h.cart.AddItem(c.Request.Context(), identity.FromContext(c), id, req.Quantity)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, cartToResponse(cart))
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (h *CartHandler) updateItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid menu item id"))
		return
	}
	var req updateItemRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	cart, err := h.cart.UpdateItem(identity.FromContext(c), id, req.Quantity)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, cartToResponse(cart))
}

func (h *CartHandler) removeItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid menu item id"))
		return
	}
	cart := h.cart.RemoveItem(identity.FromContext(c), id)
	c.JSON(http.StatusOK, cartToResponse(cart))
}

func (h *CartHandler) clear(c *gin.Context) {
	h.cart.Clear(identity.FromContext(c))
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) validate(c *gin.Context) {
	report, err := h.cart.Validate(c.Request.Context(), identity.FromContext(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":  report.Valid,
		"issues": report.Issues,
		"cart":   cartToResponse(report.Cart),
	})
}

type CartItemResponse struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
}

type CartResponse struct {
	ChefID   string             `json:"chef_id,omitempty"`
	Items    []CartItemResponse `json:"items"`
	Subtotal string             `json:"subtotal"`
}

func cartToResponse(cart service.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, CartItemResponse{
			MenuItemID: it.MenuItemID.String(),
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.StringFixed(2),
		})
	}
	resp := CartResponse{Items: items, Subtotal: cart.Subtotal().StringFixed(2)}
	if cart.ChefID != uuid.Nil {
		resp.ChefID = cart.ChefID.String()
	}
	return resp
}
