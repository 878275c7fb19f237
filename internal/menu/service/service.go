package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"teka/internal/common/identity"
	"teka/internal/common/logger"
	"teka/internal/domain"
	"teka/internal/menu/repository"
)

type MenuItemRequest struct {
	Name               string   `json:"name" validate:"required,max=100"`
	Description        string   `json:"description"`
	Price              string   `json:"price" validate:"required"`
	Category           string   `json:"category" validate:"required"`
	Ingredients        []string `json:"ingredients"`
	Allergens          []string `json:"allergens"`
	IsVegetarian       bool     `json:"is_vegetarian"`
	IsVegan            bool     `json:"is_vegan"`
	IsGlutenFree       bool     `json:"is_gluten_free"`
	IsAvailable        bool     `json:"is_available"`
	PreparationMinutes int      `json:"preparation_minutes" validate:"gte=0"`
}

// ChefDirectory resolves the acting chef's profile.
type ChefDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (domain.ChefProfile, error)
}

type MenuServiceInterface interface {
	Create(ctx context.Context, actor identity.Identity, req MenuItemRequest) (domain.MenuItem, error)
	Update(ctx context.Context, actor identity.Identity, itemID uuid.UUID, req MenuItemRequest) (domain.MenuItem, error)
	Delete(ctx context.Context, actor identity.Identity, itemID uuid.UUID) error
	SetAvailability(ctx context.Context, actor identity.Identity, itemID uuid.UUID, available bool) error
	ListOwn(ctx context.Context, actor identity.Identity) ([]domain.MenuItem, error)
	ListForChef(ctx context.Context, chefID uuid.UUID) ([]domain.MenuItem, error)
}

type MenuService struct {
	repo  repository.MenuRepositoryInterface
	chefs ChefDirectory
	log   *logger.Logger
}

func NewMenuService(repo repository.MenuRepositoryInterface, chefs ChefDirectory, log *logger.Logger) MenuServiceInterface {
	return &MenuService{repo: repo, chefs: chefs, log: log}
}

func (s *MenuService) Create(ctx context.Context, actor identity.Identity, req MenuItemRequest) (domain.MenuItem, error) {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item, err := itemFromRequest(req)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item.ID = uuid.New()
	item.ChefID = profile.ID

	if err := s.repo.Create(ctx, &item); err != nil {
		return domain.MenuItem{}, err
	}
	s.log.Info("menu_item_created", map[string]any{
		"chef_id": profile.ID.String(),
		"item_id": item.ID.String(),
	})
	return item, nil
}

func (s *MenuService) Update(ctx context.Context, actor identity.Identity, itemID uuid.UUID, req MenuItemRequest) (domain.MenuItem, error) {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item, err := itemFromRequest(req)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item.ID = itemID
	item.ChefID = profile.ID

	// Existing order items keep the price they captured; this only changes
	// what future orders will copy.
	if err := s.repo.Update(ctx, &item); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *MenuService) Delete(ctx context.Context, actor identity.Identity, itemID uuid.UUID) error {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, profile.ID, itemID)
}

func (s *MenuService) SetAvailability(ctx context.Context, actor identity.Identity, itemID uuid.UUID, available bool) error {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return err
	}
	return s.repo.SetAvailability(ctx, profile.ID, itemID, available)
}

func (s *MenuService) ListOwn(ctx context.Context, actor identity.Identity) ([]domain.MenuItem, error) {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForChef(ctx, profile.ID, false)
}

// ListForChef is the public menu: available items only.
func (s *MenuService) ListForChef(ctx context.Context, chefID uuid.UUID) ([]domain.MenuItem, error) {
	return s.repo.ListForChef(ctx, chefID, true)
}

func (s *MenuService) ownProfile(ctx context.Context, actor identity.Identity) (domain.ChefProfile, error) {
	if actor.Role != domain.RoleChef {
		return domain.ChefProfile{}, domain.Authorizationf("only chefs can manage menu items")
	}
	return s.chefs.GetByUserID(ctx, actor.UserID)
}

func itemFromRequest(req MenuItemRequest) (domain.MenuItem, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil || !price.IsPositive() {
		return domain.MenuItem{}, domain.Validationf("invalid price %q", req.Price)
	}
	category := domain.MenuCategory(req.Category)
	if !category.Valid() {
		return domain.MenuItem{}, domain.Validationf("unknown category %q", req.Category)
	}
	return domain.MenuItem{
		Name:               req.Name,
		Description:        req.Description,
		Price:              price,
		Category:           category,
		Ingredients:        req.Ingredients,
		Allergens:          req.Allergens,
		IsVegetarian:       req.IsVegetarian,
		IsVegan:            req.IsVegan,
		IsGlutenFree:       req.IsGlutenFree,
		IsAvailable:        req.IsAvailable,
		PreparationMinutes: req.PreparationMinutes,
	}, nil
}
