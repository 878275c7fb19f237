package handlers

import (
	"time"

	"teka/internal/domain"
)

// Monetary fields are serialized as decimal strings, never floats.

type OrderItemResponse struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
}

type OrderResponse struct {
	ID         string `json:"id"`
	ClientID   string `json:"client_id"`
	ChefID     string `json:"chef_id"`
	ClientName string `json:"client_name,omitempty"`
	ChefName   string `json:"chef_name,omitempty"`

	Status string `json:"status"`

	Subtotal    string `json:"subtotal"`
	DeliveryFee string `json:"delivery_fee"`
	PlatformFee string `json:"platform_fee"`
	Discount    string `json:"discount"`
	TotalAmount string `json:"total_amount"`

	DeliveryAddress      string `json:"delivery_address"`
	DeliveryInstructions string `json:"delivery_instructions,omitempty"`

	PaymentStatus string `json:"payment_status"`

	Items []OrderItemResponse `json:"items"`

	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func orderToResponse(o domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			MenuItemID: it.MenuItemID.String(),
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.StringFixed(2),
			TotalPrice: it.TotalPrice().StringFixed(2),
		})
	}
	return OrderResponse{
		ID:                   o.ID.String(),
		ClientID:             o.ClientID.String(),
		ChefID:               o.ChefID.String(),
		ClientName:           o.ClientName,
		ChefName:             o.ChefName,
		Status:               string(o.Status),
		Subtotal:             o.Subtotal.StringFixed(2),
		DeliveryFee:          o.DeliveryFee.StringFixed(2),
		PlatformFee:          o.PlatformFee.StringFixed(2),
		Discount:             o.Discount.StringFixed(2),
		TotalAmount:          o.TotalAmount.StringFixed(2),
		DeliveryAddress:      o.DeliveryAddress,
		DeliveryInstructions: o.DeliveryInstructions,
		PaymentStatus:        string(o.PaymentStatus),
		Items:                items,
		CreatedAt:            o.CreatedAt,
		ConfirmedAt:          o.ConfirmedAt,
		CompletedAt:          o.CompletedAt,
	}
}
