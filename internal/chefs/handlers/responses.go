package handlers

import (
	"time"

	"teka/internal/domain"
)

type ChefResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio,omitempty"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`

	InstagramURL string `json:"instagram_url,omitempty"`
	FacebookURL  string `json:"facebook_url,omitempty"`
	TikTokURL    string `json:"tiktok_url,omitempty"`

	IsAvailable        bool   `json:"is_available"`
	DeliveryRadiusKm   int    `json:"delivery_radius_km"`
	MinimumOrderAmount string `json:"minimum_order_amount"`

	AverageRating string `json:"average_rating"`
	TotalReviews  int    `json:"total_reviews"`

	IsVerified bool `json:"is_verified"`

	CreatedAt time.Time `json:"created_at"`
}

func chefToResponse(p domain.ChefProfile) ChefResponse {
	return ChefResponse{
		ID:                 p.ID.String(),
		UserID:             p.UserID.String(),
		DisplayName:        p.DisplayName,
		Bio:                p.Bio,
		Latitude:           p.Latitude,
		Longitude:          p.Longitude,
		Address:            p.Address,
		InstagramURL:       p.InstagramURL,
		FacebookURL:        p.FacebookURL,
		TikTokURL:          p.TikTokURL,
		IsAvailable:        p.IsAvailable,
		DeliveryRadiusKm:   p.DeliveryRadiusKm,
		MinimumOrderAmount: p.MinimumOrderAmount.StringFixed(2),
		AverageRating:      p.AverageRating.StringFixed(2),
		TotalReviews:       p.TotalReviews,
		IsVerified:         p.IsVerified,
		CreatedAt:          p.CreatedAt,
	}
}

type ScheduleSlotResponse struct {
	ID       string `json:"id"`
	Weekday  int    `json:"weekday"`
	Start    string `json:"start_time"`
	End      string `json:"end_time"`
	IsActive bool   `json:"is_active"`
}

func slotToResponse(s domain.AvailabilitySlot) ScheduleSlotResponse {
	return ScheduleSlotResponse{
		ID:       s.ID.String(),
		Weekday:  s.Weekday,
		Start:    s.Start,
		End:      s.End,
		IsActive: s.IsActive,
	}
}

type UnavailableDateResponse struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

type AnalyticsResponse struct {
	TotalRevenue  string `json:"total_revenue"`
	TotalOrders   int    `json:"total_orders"`
	UniqueClients int    `json:"unique_clients"`

	AverageRating string `json:"average_rating"`
	TotalReviews  int    `json:"total_reviews"`

	TopItems []TopItemResponse `json:"top_items"`
}

type TopItemResponse struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	UnitsSold  int    `json:"units_sold"`
	Revenue    string `json:"revenue"`
}

func analyticsToResponse(a domain.ChefAnalytics) AnalyticsResponse {
	top := make([]TopItemResponse, 0, len(a.TopItems))
	for _, item := range a.TopItems {
		top = append(top, TopItemResponse{
			MenuItemID: item.MenuItemID.String(),
			Name:       item.Name,
			UnitsSold:  item.UnitsSold,
			Revenue:    item.Revenue.StringFixed(2),
		})
	}
	return AnalyticsResponse{
		TotalRevenue:  a.TotalRevenue.StringFixed(2),
		TotalOrders:   a.TotalOrders,
		UniqueClients: a.UniqueClients,
		AverageRating: a.AverageRating.StringFixed(2),
		TotalReviews:  a.TotalReviews,
		TopItems:      top,
	}
}
