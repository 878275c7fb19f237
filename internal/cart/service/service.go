package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"teka/internal/common/identity"
	"teka/internal/domain"
)

// The cart is session state, held in memory per client and rebuilt from the
// live menu at validation time. Checkout submits the cart contents as the
// order draft; nothing here is durable.

type CartItem struct {
	MenuItemID uuid.UUID
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
}

type Cart struct {
	ChefID uuid.UUID
	Items  []CartItem
}

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// ValidationReport is the outcome of re-checking a cart against the menu.
// Lines with issues are dropped; remaining lines are repriced.
type ValidationReport struct {
	Valid  bool
	Issues []string
	Cart   Cart
}

// MenuCatalog is the slice of the menu repository the cart needs.
type MenuCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.MenuItem, error)
}

type CartServiceInterface interface {
	Get(actor identity.Identity) Cart
	AddItem(ctx context.Context, actor identity.Identity, menuItemID uuid.UUID, quantity int) (Cart, error)
	UpdateItem(actor identity.Identity, menuItemID uuid.UUID, quantity int) (Cart, error)
	RemoveItem(actor identity.Identity, menuItemID uuid.UUID) Cart
	Clear(actor identity.Identity)
	Validate(ctx context.Context, actor identity.Identity) (ValidationReport, error)
}

type CartService struct {
	menu MenuCatalog

	mu    sync.RWMutex
	carts map[uuid.UUID]*Cart
}

func NewCartService(menu MenuCatalog) *CartService {
	return &CartService{menu: menu, carts: make(map[uuid.UUID]*Cart)}
}

func (s *CartService) Get(actor identity.Identity) Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.carts[actor.UserID]; ok {
		return *c
	}
	return Cart{}
}

func (s *CartService) AddItem(ctx context.Context, actor identity.Identity, menuItemID uuid.UUID, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, domain.Validationf("quantity must be positive")
	}
	item, err := s.menu.GetByID(ctx, menuItemID)
	if err != nil {
		return Cart{}, err
	}
	if !item.IsAvailable {
		return Cart{}, domain.Validationf("menu item %q is not available", item.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[actor.UserID]
	if !ok {
		cart = &Cart{ChefID: item.ChefID}
		s.carts[actor.UserID] = cart
	}
	if cart.ChefID != item.ChefID && len(cart.Items) > 0 {
		return Cart{}, domain.Validationf("cart already holds items from another chef")
	}
	cart.ChefID = item.ChefID

	for i := range cart.Items {
		if cart.Items[i].MenuItemID == menuItemID {
			cart.Items[i].Quantity += quantity
			return *cart, nil
		}
	}
	cart.Items = append(cart.Items, CartItem{
		MenuItemID: item.ID,
		Name:       item.Name,
		Quantity:   quantity,
		UnitPrice:  item.Price,
	})
	return *cart, nil
}

func (s *CartService) UpdateItem(actor identity.Identity, menuItemID uuid.UUID, quantity int) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[actor.UserID]
	if !ok {
		return Cart{}, domain.NotFoundf("cart is empty")
	}
	for i := range cart.Items {
		if cart.Items[i].MenuItemID != menuItemID {
			continue
		}
		if quantity <= 0 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		} else {
			cart.Items[i].Quantity = quantity
		}
		return *cart, nil
	}
	return Cart{}, domain.NotFoundf("item %s is not in the cart", menuItemID)
}

func (s *CartService) RemoveItem(actor identity.Identity, menuItemID uuid.UUID) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[actor.UserID]
	if !ok {
		return Cart{}
	}
	for i := range cart.Items {
		if cart.Items[i].MenuItemID == menuItemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			break
		}
	}
	return *cart
}

func (s *CartService) Clear(actor identity.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, actor.UserID)
}

// Validate re-checks every cart line against the live menu and reprices the
// kept lines to the current menu price.
func (s *CartService) Validate(ctx context.Context, actor identity.Identity) (ValidationReport, error) {
	current := s.Get(actor)
	if len(current.Items) == 0 {
		return ValidationReport{Valid: true}, nil
	}

	ids := make([]uuid.UUID, 0, len(current.Items))
	for _, it := range current.Items {
		ids = append(ids, it.MenuItemID)
	}
	menuItems, err := s.menu.GetByIDs(ctx, ids)
	if err != nil {
		return ValidationReport{}, fmt.Errorf("load menu items: %w", err)
	}
	byID := make(map[uuid.UUID]domain.MenuItem, len(menuItems))
	for _, mi := range menuItems {
		byID[mi.ID] = mi
	}

	report := ValidationReport{Valid: true}
	kept := Cart{ChefID: current.ChefID}
	for _, line := range current.Items {
		mi, ok := byID[line.MenuItemID]
		switch {
		case !ok:
			report.Valid = false
			report.Issues = append(report.Issues, fmt.Sprintf("%s is no longer on the menu", line.Name))
			continue
		case !mi.IsAvailable:
			report.Valid = false
			report.Issues = append(report.Issues, fmt.Sprintf("%s is currently unavailable", mi.Name))
			continue
		case !mi.Price.Equal(line.UnitPrice):
			report.Valid = false
			report.Issues = append(report.Issues, fmt.Sprintf("%s price changed from %s to %s",
				mi.Name, line.UnitPrice.StringFixed(2), mi.Price.StringFixed(2)))
		}
		line.UnitPrice = mi.Price
		line.Name = mi.Name
		kept.Items = append(kept.Items, line)
	}
	report.Cart = kept

	s.mu.Lock()
	if len(kept.Items) == 0 {
		delete(s.carts, actor.UserID)
	} else {
		c := kept
		s.carts[actor.UserID] = &c
	}
	s.mu.Unlock()

	return report, nil
}
