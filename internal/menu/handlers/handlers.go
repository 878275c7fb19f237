package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"teka/internal/common/httpx"
	"teka/internal/common/identity"
	"teka/internal/common/validation"
	"teka/internal/domain"
	"teka/internal/menu/service"
)

type MenuHandler struct {
	menu service.MenuServiceInterface
	v    *validatorv10.Validate
}

func NewMenuHandler(menu service.MenuServiceInterface, v *validatorv10.Validate) *MenuHandler {
	return &MenuHandler{menu: menu, v: v}
}

func (h *MenuHandler) Register(r gin.IRouter) {
	r.GET("/chefs/:id/menu", h.listForChef)

	r.GET("/menu", h.listOwn)
	r.POST("/menu", h.create)
	r.PUT("/menu/:id", h.update)
	r.DELETE("/menu/:id", h.delete)
	r.PUT("/menu/:id/availability", h.setAvailability)
}

func (h *MenuHandler) listForChef(c *gin.Context) {
	chefID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid chef id"))
		return
	}
	items, err := h.menu.ListForChef(c.Request.Context(), chefID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": groupByCategory(items)})
}

func (h *MenuHandler) listOwn(c *gin.Context) {
	items, err := h.menu.ListOwn(c.Request.Context(), identity.FromContext(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": itemsToResponse(items)})
}

func (h *MenuHandler) create(c *gin.Context) {
	var req service.MenuItemRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	item, err := h.menu.Create(c.Request.Context(), identity.FromContext(c), req)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemToResponse(item))
}

func (h *MenuHandler) update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid menu item id"))
		return
	}
	var req service.MenuItemRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	item, err := h.menu.Update(c.Request.Context(), identity.FromContext(c), id, req)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, itemToResponse(item))
}

func (h *MenuHandler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid menu item id"))
		return
	}
	if err := h.menu.Delete(c.Request.Context(), identity.FromContext(c), id); err != nil {
		httpx.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

func (h *MenuHandler) setAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid menu item id"))
		return
	}
	var req setAvailabilityRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	if err := h.menu.SetAvailability(c.Request.Context(), identity.FromContext(c), id, *req.IsAvailable); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_available": *req.IsAvailable})
}

type MenuItemResponse struct {
	ID          string `json:"id"`
	ChefID      string `json:"chef_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Category    string `json:"category"`

	Ingredients  []string `json:"ingredients,omitempty"`
	Allergens    []string `json:"allergens,omitempty"`
	IsVegetarian bool     `json:"is_vegetarian"`
	IsVegan      bool     `json:"is_vegan"`
	IsGlutenFree bool     `json:"is_gluten_free"`

	IsAvailable        bool `json:"is_available"`
	PreparationMinutes int  `json:"preparation_minutes"`

	CreatedAt time.Time `json:"created_at"`
}

func itemToResponse(m domain.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:                 m.ID.String(),
		ChefID:             m.ChefID.String(),
		Name:               m.Name,
		Description:        m.Description,
		Price:              m.Price.StringFixed(2),
		Category:           string(m.Category),
		Ingredients:        m.Ingredients,
		Allergens:          m.Allergens,
		IsVegetarian:       m.IsVegetarian,
		IsVegan:            m.IsVegan,
		IsGlutenFree:       m.IsGlutenFree,
		IsAvailable:        m.IsAvailable,
		PreparationMinutes: m.PreparationMinutes,
		CreatedAt:          m.CreatedAt,
	}
}

func itemsToResponse(items []domain.MenuItem) []MenuItemResponse {
	out := make([]MenuItemResponse, 0, len(items))
	for _, m := range items {
		out = append(out, itemToResponse(m))
	}
	return out
}

type MenuCategoryResponse struct {
	Category string             `json:"category"`
	Items    []MenuItemResponse `json:"items"`
}

// groupByCategory folds a category-sorted listing into per-category blocks.
func groupByCategory(items []domain.MenuItem) []MenuCategoryResponse {
	out := make([]MenuCategoryResponse, 0)
	for _, m := range items {
		cat := string(m.Category)
		if len(out) == 0 || out[len(out)-1].Category != cat {
			out = append(out, MenuCategoryResponse{Category: cat})
		}
		out[len(out)-1].Items = append(out[len(out)-1].Items, itemToResponse(m))
	}
	return out
}
