package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teka/internal/chefs/repository"
	"teka/internal/common/identity"
	"teka/internal/common/logger"
	"teka/internal/domain"
)

type fakeChefRepo struct {
	profile   domain.ChefProfile
	analytics domain.ChefAnalytics

	analyticsChefID uuid.UUID
}

func (f *fakeChefRepo) GetByID(_ context.Context, id uuid.UUID) (domain.ChefProfile, error) {
	if id != f.profile.ID {
		return domain.ChefProfile{}, domain.NotFoundf("chef profile not found")
	}
	return f.profile, nil
}

func (f *fakeChefRepo) GetByUserID(_ context.Context, userID uuid.UUID) (domain.ChefProfile, error) {
	if userID != f.profile.UserID {
		return domain.ChefProfile{}, domain.NotFoundf("chef profile not found")
	}
	return f.profile, nil
}

func (f *fakeChefRepo) GetByStripeAccount(context.Context, string) (domain.ChefProfile, error) {
	return domain.ChefProfile{}, domain.NotFoundf("chef profile not found")
}

func (f *fakeChefRepo) UpdateProfile(_ context.Context, p *domain.ChefProfile) error {
	f.profile = *p
	return nil
}

func (f *fakeChefRepo) SetAvailability(_ context.Context, _ uuid.UUID, available bool) error {
	f.profile.IsAvailable = available
	return nil
}

func (f *fakeChefRepo) SetStripeAccount(context.Context, uuid.UUID, string) error { return nil }
func (f *fakeChefRepo) SetStripeConnected(context.Context, uuid.UUID, bool) error { return nil }

func (f *fakeChefRepo) Search(context.Context, repository.ChefSearchFilter) ([]domain.ChefProfile, error) {
	return []domain.ChefProfile{f.profile}, nil
}

func (f *fakeChefRepo) GetUserEmail(context.Context, uuid.UUID) (string, error) {
	return "chef@example.com", nil
}

func (f *fakeChefRepo) GetAnalytics(_ context.Context, chefID uuid.UUID) (domain.ChefAnalytics, error) {
	f.analyticsChefID = chefID
	return f.analytics, nil
}

func (f *fakeChefRepo) ReplaceSchedule(context.Context, uuid.UUID, []domain.AvailabilitySlot) error {
	return nil
}

func (f *fakeChefRepo) ListSchedule(context.Context, uuid.UUID) ([]domain.AvailabilitySlot, error) {
	return nil, nil
}

func (f *fakeChefRepo) AddUnavailableDate(context.Context, *domain.UnavailableDate) error {
	return nil
}

func (f *fakeChefRepo) RemoveUnavailableDate(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (f *fakeChefRepo) ListUnavailableDates(context.Context, uuid.UUID) ([]domain.UnavailableDate, error) {
	return nil, nil
}

func newChefFixture() (*fakeChefRepo, ChefServiceInterface, identity.Identity) {
	chefID := uuid.New()
	chefUserID := uuid.New()

	repo := &fakeChefRepo{
		profile: domain.ChefProfile{
			ID: chefID, UserID: chefUserID, DisplayName: "Jane Chef",
			MinimumOrderAmount: decimal.RequireFromString("10.00"),
		},
	}
	svc := NewChefService(repo, logger.New("test"))
	chef := identity.Identity{UserID: chefUserID, Role: domain.RoleChef}
	return repo, svc, chef
}

func TestAnalyticsResolvesOwnProfile(t *testing.T) {
	repo, svc, chef := newChefFixture()
	repo.analytics = domain.ChefAnalytics{
		TotalRevenue:  decimal.RequireFromString("123.45"),
		TotalOrders:   7,
		UniqueClients: 4,
		AverageRating: decimal.RequireFromString("4.33"),
		TotalReviews:  3,
		TopItems: []domain.TopMenuItem{
			{Name: "Beshbarmak", UnitsSold: 12, Revenue: decimal.RequireFromString("180.00")},
		},
	}

	a, err := svc.Analytics(context.Background(), chef)
	require.NoError(t, err)
	assert.Equal(t, repo.profile.ID, repo.analyticsChefID)
	assert.Equal(t, "123.45", a.TotalRevenue.StringFixed(2))
	assert.Equal(t, 7, a.TotalOrders)
	assert.Equal(t, 4, a.UniqueClients)
	require.Len(t, a.TopItems, 1)
	assert.Equal(t, "Beshbarmak", a.TopItems[0].Name)
}

func TestAnalyticsChefOnly(t *testing.T) {
	_, svc, _ := newChefFixture()

	client := identity.Identity{UserID: uuid.New(), Role: domain.RoleClient}
	_, err := svc.Analytics(context.Background(), client)
	require.Error(t, err)
	assert.True(t, domain.IsAuthorization(err))

	strangerChef := identity.Identity{UserID: uuid.New(), Role: domain.RoleChef}
	_, err = svc.Analytics(context.Background(), strangerChef)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateProfileRejectsBadMinimumOrder(t *testing.T) {
	_, svc, chef := newChefFixture()

	_, err := svc.UpdateProfile(context.Background(), chef, UpdateProfileRequest{
		Address:            "12 Abay Ave",
		MinimumOrderAmount: "not-a-number",
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}
