package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"teka/internal/common/identity"
	"teka/internal/common/logger"
	"teka/internal/config"
	"teka/internal/domain"
	"teka/internal/notifications"
)

type CreateOrderItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items                []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress      string                   `json:"delivery_address" validate:"required"`
	DeliveryInstructions string                   `json:"delivery_instructions"`
	PromoDiscount        string                   `json:"promo_discount"`
}

// MenuCatalog is the slice of the menu repository the order flow needs.
type MenuCatalog interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.MenuItem, error)
}

// ChefDirectory resolves chef profiles for validation and authorization.
type ChefDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.ChefProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (domain.ChefProfile, error)
}

// OrderRepository is the persistence port; see the repository package for the
// transactional contracts.
type OrderRepository interface {
	CreateTx(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error)
	ListForClient(ctx context.Context, clientID uuid.UUID, status *domain.OrderStatus) ([]domain.Order, error)
	ListForChef(ctx context.Context, chefID uuid.UUID, status *domain.OrderStatus) ([]domain.Order, error)
	TransitionTx(ctx context.Context, id uuid.UUID, target domain.OrderStatus, changedBy string, now time.Time) (domain.OrderStatus, error)
	MarkPaidTx(ctx context.Context, id uuid.UUID, intentID string, now time.Time) (bool, error)
	SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error
	SetPaymentStatus(ctx context.Context, id uuid.UUID, st domain.PaymentStatus) error
	GetUserDisplayName(ctx context.Context, userID uuid.UUID) (string, error)
}

type OrderServiceInterface interface {
	Create(ctx context.Context, actor identity.Identity, req CreateOrderRequest) (domain.Order, error)
	ApplyTransition(ctx context.Context, actor identity.Identity, orderID uuid.UUID, target string) (domain.Order, error)
	Get(ctx context.Context, actor identity.Identity, orderID uuid.UUID) (domain.Order, error)
	List(ctx context.Context, actor identity.Identity, status *domain.OrderStatus) ([]domain.Order, error)

	MarkPaid(ctx context.Context, orderID uuid.UUID, intentID string) error
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error
}

// OrderService owns the order lifecycle: creation, forward-only status
// transitions, lifecycle timestamps and the notification fan-out. The call
// sequence is always persist, then on success notify; a dropped notification
// never rolls back a committed state change.
type OrderService struct {
	repo     OrderRepository
	menu     MenuCatalog
	chefs    ChefDirectory
	notifier *notifications.Notifier
	fees     config.FeesConfig
	log      *logger.Logger

	nowFunc func() time.Time
}

func NewOrderService(repo OrderRepository, menu MenuCatalog, chefs ChefDirectory,
	notifier *notifications.Notifier, fees config.FeesConfig, log *logger.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		menu:     menu,
		chefs:    chefs,
		notifier: notifier,
		fees:     fees,
		log:      log,
		nowFunc:  time.Now,
	}
}

func (s *OrderService) Create(ctx context.Context, actor identity.Identity, req CreateOrderRequest) (domain.Order, error) {
	if actor.Role != domain.RoleClient {
		return domain.Order{}, domain.Authorizationf("only clients can place orders")
	}
	if len(req.Items) == 0 {
		return domain.Order{}, domain.Validationf("at least one item is required")
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return domain.Order{}, domain.Validationf("invalid quantity for item %s", it.MenuItemID)
		}
		id, err := uuid.Parse(it.MenuItemID)
		if err != nil {
			return domain.Order{}, domain.Validationf("invalid menu item id %q", it.MenuItemID)
		}
		ids = append(ids, id)
	}

	menuItems, err := s.menu.GetByIDs(ctx, ids)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load menu items: %w", err)
	}
	byID := make(map[uuid.UUID]domain.MenuItem, len(menuItems))
	for _, mi := range menuItems {
		byID[mi.ID] = mi
	}

	var chefID uuid.UUID
	subtotal := decimal.Zero
	items := make([]domain.OrderItem, 0, len(req.Items))
	for i, reqItem := range req.Items {
		mi, ok := byID[ids[i]]
		if !ok {
			return domain.Order{}, domain.Validationf("menu item %s does not exist", reqItem.MenuItemID)
		}
		if !mi.IsAvailable {
			return domain.Order{}, domain.Validationf("menu item %q is not available", mi.Name)
		}
		if chefID == uuid.Nil {
			chefID = mi.ChefID
		} else if chefID != mi.ChefID {
			return domain.Order{}, domain.Validationf("an order may only contain items from one chef")
		}
		// The unit price is copied here and never re-read from the menu.
		items = append(items, domain.OrderItem{
			ID:         uuid.New(),
			MenuItemID: mi.ID,
			Name:       mi.Name,
			Quantity:   reqItem.Quantity,
			UnitPrice:  mi.Price,
		})
		subtotal = subtotal.Add(mi.Price.Mul(decimal.NewFromInt(int64(reqItem.Quantity))))
	}

	chef, err := s.chefs.GetByID(ctx, chefID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load chef: %w", err)
	}
	if !chef.IsAvailable {
		return domain.Order{}, domain.Validationf("chef %s is not accepting orders right now", chef.DisplayName)
	}
	if subtotal.LessThan(chef.MinimumOrderAmount) {
		return domain.Order{}, domain.Validationf("subtotal %s is below the chef's minimum order amount %s",
			subtotal.StringFixed(2), chef.MinimumOrderAmount.StringFixed(2))
	}

	discount := decimal.Zero
	if req.PromoDiscount != "" {
		discount, err = decimal.NewFromString(req.PromoDiscount)
		if err != nil || discount.IsNegative() {
			return domain.Order{}, domain.Validationf("invalid promo discount %q", req.PromoDiscount)
		}
	}

	clientName, err := s.repo.GetUserDisplayName(ctx, actor.UserID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load client: %w", err)
	}

	deliveryFee := s.fees.DeliveryFee
	platformFee := subtotal.Mul(s.fees.PlatformFeeRate).Round(2)
	total := subtotal.Add(deliveryFee).Add(platformFee).Sub(discount)

	now := s.nowFunc().UTC()
	order := domain.Order{
		ID:                   uuid.New(),
		ClientID:             actor.UserID,
		ChefID:               chef.ID,
		ClientName:           clientName,
		ChefName:             chef.DisplayName,
		Status:               domain.StatusPlaced,
		Subtotal:             subtotal,
		DeliveryFee:          deliveryFee,
		PlatformFee:          platformFee,
		Discount:             discount,
		TotalAmount:          total,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryInstructions: req.DeliveryInstructions,
		PaymentStatus:        domain.PaymentPending,
		Items:                items,
		CreatedAt:            now,
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	if err := s.repo.CreateTx(ctx, &order); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.notifier.Notify(ctx, notifications.ChefChannel(chef.UserID), notifications.Event{
		Kind:        notifications.KindNewOrder,
		Message:     fmt.Sprintf("New order #%s received!", order.ShortID()),
		OrderID:     order.ID.String(),
		ClientName:  clientName,
		TotalAmount: order.TotalAmount.StringFixed(2),
	})

	s.log.Info("order_created", map[string]any{
		"order_id": order.ID.String(),
		"chef_id":  chef.ID.String(),
		"total":    order.TotalAmount.StringFixed(2),
	})
	return order, nil
}

// ApplyTransition validates, authorizes and persists one lifecycle step, then
// notifies the client. Policy: the owning chef may apply any legal transition;
// the client who placed the order may only cancel it (legal from placed and
// confirmed).
func (s *OrderService) ApplyTransition(ctx context.Context, actor identity.Identity, orderID uuid.UUID, target string) (domain.Order, error) {
	status, err := domain.ParseOrderStatus(target)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.authorizeTransition(ctx, actor, order, status); err != nil {
		return domain.Order{}, err
	}

	now := s.nowFunc().UTC()
	prev, err := s.repo.TransitionTx(ctx, order.ID, status, actor.UserID.String(), now)
	if err != nil {
		return domain.Order{}, err
	}

	updated, err := s.repo.GetByID(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}

	// Status-update events always go to the client's private channel.
	s.notifier.Notify(ctx, notifications.ClientChannel(order.ClientID), notifications.Event{
		Kind:     notifications.KindOrderStatusUpdate,
		Message:  domain.StatusMessage(status, order.ChefName),
		OrderID:  order.ID.String(),
		Status:   string(status),
		ChefName: order.ChefName,
	})

	s.log.Info("order_status_updated", map[string]any{
		"order_id": order.ID.String(),
		"from":     string(prev),
		"to":       string(status),
	})
	return updated, nil
}

func (s *OrderService) authorizeTransition(ctx context.Context, actor identity.Identity, order domain.Order, target domain.OrderStatus) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleChef:
		profile, err := s.chefs.GetByUserID(ctx, actor.UserID)
		if err != nil || profile.ID != order.ChefID {
			return domain.Authorizationf("order %s does not belong to this chef", order.ID)
		}
		return nil
	case domain.RoleClient:
		if actor.UserID != order.ClientID {
			return domain.Authorizationf("order %s does not belong to this client", order.ID)
		}
		if target != domain.StatusCancelled {
			return domain.Authorizationf("clients may only cancel their orders")
		}
		return nil
	}
	return domain.Authorizationf("role %q may not change order status", actor.Role)
}

func (s *OrderService) Get(ctx context.Context, actor identity.Identity, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleClient:
		if order.ClientID != actor.UserID {
			return domain.Order{}, domain.Authorizationf("order %s does not belong to this client", orderID)
		}
	case domain.RoleChef:
		profile, err := s.chefs.GetByUserID(ctx, actor.UserID)
		if err != nil || profile.ID != order.ChefID {
			return domain.Order{}, domain.Authorizationf("order %s does not belong to this chef", orderID)
		}
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, actor identity.Identity, status *domain.OrderStatus) ([]domain.Order, error) {
	switch actor.Role {
	case domain.RoleClient:
		return s.repo.ListForClient(ctx, actor.UserID, status)
	case domain.RoleChef:
		profile, err := s.chefs.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, domain.Authorizationf("no chef profile for this user")
		}
		return s.repo.ListForChef(ctx, profile.ID, status)
	}
	return nil, domain.Authorizationf("role %q has no order listing", actor.Role)
}

// MarkPaid is driven by the payment webhook. A paid order that is still
// placed moves to confirmed, which also notifies the client.
func (s *OrderService) MarkPaid(ctx context.Context, orderID uuid.UUID, intentID string) error {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	confirmed, err := s.repo.MarkPaidTx(ctx, orderID, intentID, s.nowFunc().UTC())
	if err != nil {
		return err
	}
	if confirmed {
		s.notifier.Notify(ctx, notifications.ClientChannel(order.ClientID), notifications.Event{
			Kind:     notifications.KindOrderStatusUpdate,
			Message:  domain.StatusMessage(domain.StatusConfirmed, order.ChefName),
			OrderID:  order.ID.String(),
			Status:   string(domain.StatusConfirmed),
			ChefName: order.ChefName,
		})
	}
	s.log.Info("order_paid", map[string]any{"order_id": orderID.String()})
	return nil
}

func (s *OrderService) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	if err := s.repo.SetPaymentStatus(ctx, orderID, domain.PaymentFailed); err != nil {
		return err
	}
	s.log.Info("order_payment_failed", map[string]any{"order_id": orderID.String()})
	return nil
}
