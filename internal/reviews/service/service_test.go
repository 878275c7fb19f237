package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teka/internal/common/identity"
	"teka/internal/common/logger"
	"teka/internal/domain"
	"teka/internal/notifications"
)

type fakeReviewRepo struct {
	reviews map[uuid.UUID]domain.Review // keyed by order id
	chefs   *fakeChefs
}

func (f *fakeReviewRepo) CreateTx(_ context.Context, review *domain.Review) error {
	if _, ok := f.reviews[review.OrderID]; ok {
		return domain.Conflictf("order %s already has a review", review.OrderID)
	}
	f.reviews[review.OrderID] = *review

	// Same write contract as the SQL repository: the chef's aggregates are
	// recomputed from approved reviews in the same transaction.
	sum, count := decimal.Zero, 0
	for _, r := range f.reviews {
		if r.ChefID == review.ChefID && r.IsApproved {
			sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
			count++
		}
	}
	if count > 0 {
		f.chefs.profile.AverageRating = sum.Div(decimal.NewFromInt(int64(count))).Round(2)
	}
	f.chefs.profile.TotalReviews = count
	return nil
}

func (f *fakeReviewRepo) ListForChef(_ context.Context, chefID uuid.UUID) ([]domain.Review, error) {
	var out []domain.Review
	for _, r := range f.reviews {
		if r.ChefID == chefID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeOrders struct {
	orders map[uuid.UUID]domain.Order
}

func (f *fakeOrders) GetByID(_ context.Context, id uuid.UUID) (domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, domain.NotFoundf("order %s not found", id)
	}
	return o, nil
}

type fakeChefs struct {
	profile domain.ChefProfile
}

func (f *fakeChefs) GetByID(_ context.Context, id uuid.UUID) (domain.ChefProfile, error) {
	if id != f.profile.ID {
		return domain.ChefProfile{}, domain.NotFoundf("chef profile not found")
	}
	return f.profile, nil
}

type fakePublisher struct {
	channels []string
	events   []notifications.Event
}

func (f *fakePublisher) Publish(_ context.Context, channel string, ev notifications.Event) error {
	f.channels = append(f.channels, channel)
	f.events = append(f.events, ev)
	return nil
}

type fixture struct {
	svc    *ReviewService
	orders *fakeOrders
	chefs  *fakeChefs
	pub    *fakePublisher
	client identity.Identity

	orderID    uuid.UUID
	chefID     uuid.UUID
	chefUserID uuid.UUID
}

func newFixture(t *testing.T, status domain.OrderStatus) *fixture {
	t.Helper()

	clientID := uuid.New()
	chefID := uuid.New()
	chefUserID := uuid.New()
	orderID := uuid.New()

	orders := &fakeOrders{orders: map[uuid.UUID]domain.Order{
		orderID: {ID: orderID, ClientID: clientID, ChefID: chefID, Status: status},
	}}
	chefs := &fakeChefs{profile: domain.ChefProfile{ID: chefID, UserID: chefUserID}}
	pub := &fakePublisher{}
	log := logger.New("test")

	svc := NewReviewService(
		&fakeReviewRepo{reviews: map[uuid.UUID]domain.Review{}, chefs: chefs},
		orders, chefs, notifications.NewNotifier(pub, log), log,
	)
	svc.nowFunc = func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) }

	return &fixture{
		svc:        svc,
		orders:     orders,
		chefs:      chefs,
		pub:        pub,
		client:     identity.Identity{UserID: clientID, Role: domain.RoleClient},
		orderID:    orderID,
		chefID:     chefID,
		chefUserID: chefUserID,
	}
}

// addDeliveredOrder registers another delivered order for the fixture's
// client and chef so more than one review can be submitted.
func (fx *fixture) addDeliveredOrder() uuid.UUID {
	id := uuid.New()
	fx.orders.orders[id] = domain.Order{
		ID: id, ClientID: fx.client.UserID, ChefID: fx.chefID, Status: domain.StatusDelivered,
	}
	return id
}

func TestSubmitReview(t *testing.T) {
	fx := newFixture(t, domain.StatusDelivered)

	review, err := fx.svc.Submit(context.Background(), fx.client, SubmitReviewRequest{
		OrderID: fx.orderID.String(),
		Rating:  5,
		Comment: "Incredible plov",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.True(t, review.IsApproved)

	require.Len(t, fx.pub.events, 1)
	assert.Equal(t, notifications.ChefChannel(fx.chefUserID), fx.pub.channels[0])
	assert.Equal(t, notifications.KindOrderNotification, fx.pub.events[0].Kind)
	assert.Equal(t, `You received a 5-star review! "Incredible plov"...`, fx.pub.events[0].Message)
}

func TestSubmitReviewTwiceConflicts(t *testing.T) {
	fx := newFixture(t, domain.StatusDelivered)
	req := SubmitReviewRequest{OrderID: fx.orderID.String(), Rating: 4}

	_, err := fx.svc.Submit(context.Background(), fx.client, req)
	require.NoError(t, err)

	_, err = fx.svc.Submit(context.Background(), fx.client, req)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestSubmitReviewRecomputesChefAggregates(t *testing.T) {
	fx := newFixture(t, domain.StatusDelivered)
	ctx := context.Background()

	submit := func(orderID uuid.UUID, rating int) {
		t.Helper()
		_, err := fx.svc.Submit(ctx, fx.client, SubmitReviewRequest{
			OrderID: orderID.String(), Rating: rating,
		})
		require.NoError(t, err)
	}

	submit(fx.orderID, 5)
	assert.Equal(t, "5.00", fx.chefs.profile.AverageRating.StringFixed(2))
	assert.Equal(t, 1, fx.chefs.profile.TotalReviews)

	submit(fx.addDeliveredOrder(), 4)
	assert.Equal(t, "4.50", fx.chefs.profile.AverageRating.StringFixed(2))
	assert.Equal(t, 2, fx.chefs.profile.TotalReviews)

	// 13/3 rounded to 2 places
	submit(fx.addDeliveredOrder(), 4)
	assert.Equal(t, "4.33", fx.chefs.profile.AverageRating.StringFixed(2))
	assert.Equal(t, 3, fx.chefs.profile.TotalReviews)
}

func TestSubmitReviewRequiresDelivered(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.StatusPlaced, domain.StatusConfirmed, domain.StatusReady, domain.StatusCancelled,
	} {
		fx := newFixture(t, status)
		_, err := fx.svc.Submit(context.Background(), fx.client, SubmitReviewRequest{
			OrderID: fx.orderID.String(), Rating: 4,
		})
		require.Error(t, err, "status %s", status)
		assert.True(t, domain.IsValidation(err))
	}
}

func TestSubmitReviewOwnershipAndRole(t *testing.T) {
	fx := newFixture(t, domain.StatusDelivered)

	stranger := identity.Identity{UserID: uuid.New(), Role: domain.RoleClient}
	_, err := fx.svc.Submit(context.Background(), stranger, SubmitReviewRequest{
		OrderID: fx.orderID.String(), Rating: 3,
	})
	require.Error(t, err)
	assert.True(t, domain.IsAuthorization(err))

	chef := identity.Identity{UserID: fx.chefUserID, Role: domain.RoleChef}
	_, err = fx.svc.Submit(context.Background(), chef, SubmitReviewRequest{
		OrderID: fx.orderID.String(), Rating: 3,
	})
	require.Error(t, err)
	assert.True(t, domain.IsAuthorization(err))
}

func TestSubmitReviewRatingBounds(t *testing.T) {
	fx := newFixture(t, domain.StatusDelivered)
	for _, rating := range []int{0, 6, -1} {
		_, err := fx.svc.Submit(context.Background(), fx.client, SubmitReviewRequest{
			OrderID: fx.orderID.String(), Rating: rating,
		})
		require.Error(t, err, "rating %d", rating)
		assert.True(t, domain.IsValidation(err))
	}
}

func TestReviewMessageExcerpt(t *testing.T) {
	long := "This was the single best home-cooked meal I have ever had in my life"
	msg := reviewMessage(domain.Review{Rating: 5, Comment: long})
	assert.Equal(t, `You received a 5-star review! "`+long[:50]+`"...`, msg)

	assert.Equal(t, "You received a 2-star review!", reviewMessage(domain.Review{Rating: 2}))
}
