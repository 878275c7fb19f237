package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"teka/internal/chefs/repository"
	"teka/internal/chefs/service"
	"teka/internal/common/httpx"
	"teka/internal/common/identity"
	"teka/internal/common/validation"
	"teka/internal/domain"
)

type ChefHandler struct {
	chefs service.ChefServiceInterface
	v     *validatorv10.Validate
}

func NewChefHandler(chefs service.ChefServiceInterface, v *validatorv10.Validate) *ChefHandler {
	return &ChefHandler{chefs: chefs, v: v}
}

func (h *ChefHandler) Register(r gin.IRouter) {
	r.GET("/chefs", h.search)
	r.GET("/chefs/:id", h.get)
	r.GET("/chefs/:id/schedule", h.schedule)

	r.GET("/chefs/me", h.getOwn)
	r.PUT("/chefs/me", h.updateProfile)
	r.GET("/chefs/me/analytics", h.analytics)
	r.PUT("/chefs/me/availability", h.setAvailability)
	r.PUT("/chefs/me/schedule", h.replaceSchedule)
	r.GET("/chefs/me/unavailable-dates", h.listUnavailableDates)
	r.POST("/chefs/me/unavailable-dates", h.addUnavailableDate)
	r.DELETE("/chefs/me/unavailable-dates/:id", h.removeUnavailableDate)
}

func (h *ChefHandler) search(c *gin.Context) {
	f := repository.ChefSearchFilter{
		Query:         c.Query("q"),
		OnlyAvailable: c.Query("available") == "true",
		OnlyVerified:  c.Query("verified") == "true",
	}
	if raw := c.Query("min_rating"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			httpx.Error(c, domain.Validationf("invalid min_rating %q", raw))
			return
		}
		f.MinRating = d
	}
	chefs, err := h.chefs.Search(c.Request.Context(), f)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	out := make([]ChefResponse, 0, len(chefs))
	for _, p := range chefs {
		out = append(out, chefToResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"chefs": out})
}

func (h *ChefHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid chef id"))
		return
	}
	profile, err := h.chefs.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, chefToResponse(profile))
}

func (h *ChefHandler) getOwn(c *gin.Context) {
	profile, err := h.chefs.GetOwn(c.Request.Context(), identity.FromContext(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, chefToResponse(profile))
}

func (h *ChefHandler) updateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	profile, err := h.chefs.UpdateProfile(c.Request.Context(), identity.FromContext(c), req)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, chefToResponse(profile))
}

type setAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

func (h *ChefHandler) setAvailability(c *gin.Context) {
	var req setAvailabilityRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	if err := h.chefs.SetAvailability(c.Request.Context(), identity.FromContext(c), *req.IsAvailable); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_available": *req.IsAvailable})
}

func (h *ChefHandler) analytics(c *gin.Context) {
	a, err := h.chefs.Analytics(c.Request.Context(), identity.FromContext(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, analyticsToResponse(a))
}

type replaceScheduleRequest struct {
	Slots []service.ScheduleSlotRequest `json:"slots" validate:"dive"`
}

func (h *ChefHandler) replaceSchedule(c *gin.Context) {
	var req replaceScheduleRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	if err := h.chefs.ReplaceSchedule(c.Request.Context(), identity.FromContext(c), req.Slots); err != nil {
		httpx.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChefHandler) schedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid chef id"))
		return
	}
	slots, err := h.chefs.ListSchedule(c.Request.Context(), id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	out := make([]ScheduleSlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotToResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"slots": out})
}

type addUnavailableDateRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason string `json:"reason"`
}

func (h *ChefHandler) addUnavailableDate(c *gin.Context) {
	var req addUnavailableDateRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid date %q", req.Date))
		return
	}
	if err := h.chefs.AddUnavailableDate(c.Request.Context(), identity.FromContext(c), date, req.Reason); err != nil {
		httpx.Error(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *ChefHandler) removeUnavailableDate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Error(c, domain.Validationf("invalid id"))
		return
	}
	if err := h.chefs.RemoveUnavailableDate(c.Request.Context(), identity.FromContext(c), id); err != nil {
		httpx.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChefHandler) listUnavailableDates(c *gin.Context) {
	dates, err := h.chefs.ListUnavailableDates(c.Request.Context(), identity.FromContext(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	out := make([]UnavailableDateResponse, 0, len(dates))
	for _, d := range dates {
		out = append(out, UnavailableDateResponse{
			ID:     d.ID.String(),
			Date:   d.Date.Format("2006-01-02"),
			Reason: d.Reason,
		})
	}
	c.JSON(http.StatusOK, gin.H{"dates": out})
}
