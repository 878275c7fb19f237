package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleClient Role = "client"
	RoleChef   Role = "chef"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	Role        Role
	PhoneNumber string
	CreatedAt   time.Time
}

// ChefProfile carries everything a chef exposes to the marketplace.
// AverageRating and TotalReviews are derived fields, recomputed whenever a
// review for this chef is created; they are never calculated at read time.
type ChefProfile struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	DisplayName string
	Bio         string

	Latitude  float64
	Longitude float64
	Address   string

	InstagramURL string
	FacebookURL  string
	TikTokURL    string

	IsAvailable        bool
	DeliveryRadiusKm   int
	MinimumOrderAmount decimal.Decimal

	AverageRating decimal.Decimal
	TotalReviews  int

	StripeAccountID string
	StripeConnected bool
	IsVerified      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type MenuCategory string

const (
	CategoryAppetizer  MenuCategory = "appetizer"
	CategoryMainCourse MenuCategory = "main_course"
	CategoryDessert    MenuCategory = "dessert"
	CategoryBeverage   MenuCategory = "beverage"
	CategorySideDish   MenuCategory = "side_dish"
)

func (c MenuCategory) Valid() bool {
	switch c {
	case CategoryAppetizer, CategoryMainCourse, CategoryDessert, CategoryBeverage, CategorySideDish:
		return true
	}
	return false
}

type MenuItem struct {
	ID          uuid.UUID
	ChefID      uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Category    MenuCategory

	Ingredients  []string
	Allergens    []string
	IsVegetarian bool
	IsVegan      bool
	IsGlutenFree bool

	IsAvailable        bool
	PreparationMinutes int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order is the one shared mutable entity in the system. Monetary fields and
// delivery details are set once at creation; only the lifecycle transition
// operation may change Status and the lifecycle timestamps afterwards.
// Invariant: TotalAmount = Subtotal + DeliveryFee + PlatformFee - Discount,
// fixed at creation and never recomputed.
type Order struct {
	ID       uuid.UUID
	ClientID uuid.UUID
	ChefID   uuid.UUID

	// Display names joined from users for notification payloads.
	ClientName string
	ChefName   string

	Status OrderStatus

	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	PlatformFee decimal.Decimal
	Discount    decimal.Decimal
	TotalAmount decimal.Decimal

	DeliveryAddress      string
	DeliveryInstructions string

	PaymentIntentID string
	PaymentStatus   PaymentStatus

	Items []OrderItem

	CreatedAt   time.Time
	ConfirmedAt *time.Time
	CompletedAt *time.Time
}

// ShortID is the first uuid block, used in human-readable notifications.
func (o Order) ShortID() string {
	s := o.ID.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// OrderItem captures the menu item's name and price at order time. The copy
// is immutable: later edits to the live MenuItem never flow back into it.
type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
}

func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Review is one-to-one with a delivered order.
type Review struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	ClientID uuid.UUID
	ChefID   uuid.UUID

	Rating  int
	Comment string

	IsApproved bool
	CreatedAt  time.Time
}

// AvailabilitySlot is one entry of a chef's weekly schedule.
type AvailabilitySlot struct {
	ID       uuid.UUID
	ChefID   uuid.UUID
	Weekday  int // 0 = Monday, matching the schedule UI
	Start    string
	End      string
	IsActive bool
}

// UnavailableDate marks a specific day a chef is off (vacation, holiday).
type UnavailableDate struct {
	ID     uuid.UUID
	ChefID uuid.UUID
	Date   time.Time
	Reason string
}

// ChefAnalytics is the chef dashboard summary, aggregated from orders and
// reviews already on record. Cancelled and rejected orders are excluded.
type ChefAnalytics struct {
	TotalRevenue  decimal.Decimal
	TotalOrders   int
	UniqueClients int

	AverageRating decimal.Decimal
	TotalReviews  int

	TopItems []TopMenuItem
}

// TopMenuItem ranks a menu item by units sold, with revenue at the captured
// order prices.
type TopMenuItem struct {
	MenuItemID uuid.UUID
	Name       string
	UnitsSold  int
	Revenue    decimal.Decimal
}
