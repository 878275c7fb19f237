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
	"teka/internal/reviews/service"
)

type ReviewHandler struct {
	reviews service.ReviewServiceInterface
	v       *validatorv10.Validate
}

func NewReviewHandler(reviews service.ReviewServiceInterface, v *validatorv10.Validate) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, v: v}
}

func (h *ReviewHandler) Register(r gin.IRouter) {
	r.POST("/reviews", h.submit)
	r.GET("/chefs/:id/reviews", h.listForChef)
}

func (h *ReviewHandler) submit(c *gin.Context) {
	var req service.SubmitReviewRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	review, err := h.reviews.Submit(c.Request.Context(), identity.FromContext(c), req)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, reviewToResponse(review))
}

func (h *ReviewHandler) listForChef(c *gin.Context) {
	chefID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid chef id"))
		return
	}
	reviews, err := h.reviews.ListForChef(c.Request.Context(), chefID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, reviewToResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"reviews": out})
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	ChefID    string    `json:"chef_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func reviewToResponse(r domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID.String(),
		OrderID:   r.OrderID.String(),
		ChefID:    r.ChefID.String(),
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
