package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"teka/internal/chefs/repository"
	"teka/internal/common/identity"
	"teka/internal/common/logger"
	"teka/internal/domain"
)

type UpdateProfileRequest struct {
	Bio                string  `json:"bio"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	Address            string  `json:"address" validate:"required"`
	InstagramURL       string  `json:"instagram_url" validate:"omitempty,url"`
	FacebookURL        string  `json:"facebook_url" validate:"omitempty,url"`
	TikTokURL          string  `json:"tiktok_url" validate:"omitempty,url"`
	DeliveryRadiusKm   int     `json:"delivery_radius_km" validate:"gte=0"`
	MinimumOrderAmount string  `json:"minimum_order_amount"`
}

type ScheduleSlotRequest struct {
	Weekday  int    `json:"weekday" validate:"gte=0,lte=6"`
	Start    string `json:"start_time" validate:"required"`
	End      string `json:"end_time" validate:"required"`
	IsActive bool   `json:"is_active"`
}

type ChefServiceInterface interface {
	Get(ctx context.Context, chefID uuid.UUID) (domain.ChefProfile, error)
	GetOwn(ctx context.Context, actor identity.Identity) (domain.ChefProfile, error)
	UpdateProfile(ctx context.Context, actor identity.Identity, req UpdateProfileRequest) (domain.ChefProfile, error)
	SetAvailability(ctx context.Context, actor identity.Identity, available bool) error
	Search(ctx context.Context, f repository.ChefSearchFilter) ([]domain.ChefProfile, error)
	Analytics(ctx context.Context, actor identity.Identity) (domain.ChefAnalytics, error)

	ReplaceSchedule(ctx context.Context, actor identity.Identity, slots []ScheduleSlotRequest) error
	ListSchedule(ctx context.Context, chefID uuid.UUID) ([]domain.AvailabilitySlot, error)
	AddUnavailableDate(ctx context.Context, actor identity.Identity, date time.Time, reason string) error
	RemoveUnavailableDate(ctx context.Context, actor identity.Identity, id uuid.UUID) error
	ListUnavailableDates(ctx context.Context, actor identity.Identity) ([]domain.UnavailableDate, error)
}

type ChefService struct {
	repo repository.ChefRepositoryInterface
	log  *logger.Logger
}

func NewChefService(repo repository.ChefRepositoryInterface, log *logger.Logger) ChefServiceInterface {
	return &ChefService{repo: repo, log: log}
}

func (s *ChefService) Get(ctx context.Context, chefID uuid.UUID) (domain.ChefProfile, error) {
	return s.repo.GetByID(ctx, chefID)
}

func (s *ChefService) GetOwn(ctx context.Context, actor identity.Identity) (domain.ChefProfile, error) {
	return s.ownProfile(ctx, actor)
}

func (s *ChefService) UpdateProfile(ctx context.Context, actor identity.Identity, req UpdateProfileRequest) (domain.ChefProfile, error) {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return domain.ChefProfile{}, err
	}

	minOrder := profile.MinimumOrderAmount
	if req.MinimumOrderAmount != "" {
		minOrder, err = decimal.NewFromString(req.MinimumOrderAmount)
		if err != nil || minOrder.IsNegative() {
			return domain.ChefProfile{}, domain.Validationf("invalid minimum order amount %q", req.MinimumOrderAmount)
		}
	}

	profile.Bio = req.Bio
	profile.Latitude = req.Latitude
	profile.Longitude = req.Longitude
	profile.Address = req.Address
	profile.InstagramURL = req.InstagramURL
	profile.FacebookURL = req.FacebookURL
	profile.TikTokURL = req.TikTokURL
	profile.DeliveryRadiusKm = req.DeliveryRadiusKm
	profile.MinimumOrderAmount = minOrder

	if err := s.repo.UpdateProfile(ctx, &profile); err != nil {
		return domain.ChefProfile{}, err
	}
	s.log.Info("chef_profile_updated", map[string]any{"chef_id": profile.ID.String()})
	return profile, nil
}

func (s *ChefService) SetAvailability(ctx context.Context, actor identity.Identity, available bool) error {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return err
	}
	if err := s.repo.SetAvailability(ctx, profile.ID, available); err != nil {
		return err
	}
	s.log.Info("chef_availability_toggled", map[string]any{
		"chef_id":   profile.ID.String(),
		"available": available,
	})
	return nil
}

func (s *ChefService) Search(ctx context.Context, f repository.ChefSearchFilter) ([]domain.ChefProfile, error) {
	return s.repo.Search(ctx, f)
}

// Analytics returns the dashboard summary for the calling chef's own profile.
func (s *ChefService) Analytics(ctx context.Context, actor identity.Identity) (domain.ChefAnalytics, error) {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return domain.ChefAnalytics{}, err
	}
	return s.repo.GetAnalytics(ctx, profile.ID)
}

func (s *ChefService) ReplaceSchedule(ctx context.Context, actor identity.Identity, slots []ScheduleSlotRequest) error {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return err
	}
	out := make([]domain.AvailabilitySlot, 0, len(slots))
	for _, sl := range slots {
		if sl.Weekday < 0 || sl.Weekday > 6 {
			return domain.Validationf("invalid weekday %d", sl.Weekday)
		}
		out = append(out, domain.AvailabilitySlot{
			ID:       uuid.New(),
			ChefID:   profile.ID,
			Weekday:  sl.Weekday,
			Start:    sl.Start,
			End:      sl.End,
			IsActive: sl.IsActive,
		})
	}
	return s.repo.ReplaceSchedule(ctx, profile.ID, out)
}

func (s *ChefService) ListSchedule(ctx context.Context, chefID uuid.UUID) ([]domain.AvailabilitySlot, error) {
	return s.repo.ListSchedule(ctx, chefID)
}

func (s *ChefService) AddUnavailableDate(ctx context.Context, actor identity.Identity, date time.Time, reason string) error {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return err
	}
	return s.repo.AddUnavailableDate(ctx, &domain.UnavailableDate{
		ID:     uuid.New(),
		ChefID: profile.ID,
		Date:   date,
		Reason: reason,
	})
}

func (s *ChefService) RemoveUnavailableDate(ctx context.Context, actor identity.Identity, id uuid.UUID) error {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return err
	}
	return s.repo.RemoveUnavailableDate(ctx, profile.ID, id)
}

func (s *ChefService) ListUnavailableDates(ctx context.Context, actor identity.Identity) ([]domain.UnavailableDate, error) {
	profile, err := s.ownProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.repo.ListUnavailableDates(ctx, profile.ID)
}

func (s *ChefService) ownProfile(ctx context.Context, actor identity.Identity) (domain.ChefProfile, error) {
	if actor.Role != domain.RoleChef {
		return domain.ChefProfile{}, domain.Authorizationf("only chefs can manage a chef profile")
	}
	profile, err := s.repo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return domain.ChefProfile{}, err
	}
	return profile, nil
}
