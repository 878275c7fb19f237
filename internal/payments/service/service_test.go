package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teka/internal/common/identity"
	"teka/internal/common/logger"
	"teka/internal/config"
	"teka/internal/domain"
	"teka/internal/payments/provider"
)

type fakeProvider struct {
	accounts       map[string]bool // account id -> fully enabled
	createdIntents []provider.IntentParams
	webhookEvent   provider.WebhookEvent
	webhookErr     error
}

func (f *fakeProvider) CreateExpressAccount(_ context.Context, _ string) (string, error) {
	id := "acct_" + uuid.NewString()[:8]
	f.accounts[id] = false
	return id, nil
}

func (f *fakeProvider) AccountLink(_ context.Context, accountID, _, _ string) (string, error) {
	return "https://connect.example/" + accountID, nil
}

func (f *fakeProvider) AccountStatus(_ context.Context, accountID string) (bool, bool, error) {
	enabled := f.accounts[accountID]
	return enabled, enabled, nil
}

func (f *fakeProvider) CreateIntent(_ context.Context, p provider.IntentParams) (provider.Intent, error) {
	f.createdIntents = append(f.createdIntents, p)
	return provider.Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

func (f *fakeProvider) ParseWebhook(_ []byte, _ string) (provider.WebhookEvent, error) {
	return f.webhookEvent, f.webhookErr
}

type fakeOrders struct {
	orders  map[uuid.UUID]*domain.Order
	intents map[uuid.UUID]string
}

func (f *fakeOrders) GetByID(_ context.Context, id uuid.UUID) (domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, domain.NotFoundf("order %s not found", id)
	}
	return *o, nil
}

func (f *fakeOrders) SetPaymentIntent(_ context.Context, id uuid.UUID, intentID string) error {
	f.intents[id] = intentID
	return nil
}

type fakeLifecycle struct {
	paid   []uuid.UUID
	failed []uuid.UUID
}

func (f *fakeLifecycle) MarkPaid(_ context.Context, orderID uuid.UUID, _ string) error {
	f.paid = append(f.paid, orderID)
	return nil
}

func (f *fakeLifecycle) MarkPaymentFailed(_ context.Context, orderID uuid.UUID) error {
	f.failed = append(f.failed, orderID)
	return nil
}

type fakeChefs struct {
	byUser map[uuid.UUID]*domain.ChefProfile
	emails map[uuid.UUID]string
}

func (f *fakeChefs) GetByID(_ context.Context, id uuid.UUID) (domain.ChefProfile, error) {
	for _, p := range f.byUser {
		if p.ID == id {
			return *p, nil
		}
	}
	return domain.ChefProfile{}, domain.NotFoundf("chef profile not found")
}

func (f *fakeChefs) GetByUserID(_ context.Context, userID uuid.UUID) (domain.ChefProfile, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return domain.ChefProfile{}, domain.NotFoundf("chef profile not found")
	}
	return *p, nil
}

func (f *fakeChefs) GetByStripeAccount(_ context.Context, accountID string) (domain.ChefProfile, error) {
	for _, p := range f.byUser {
		if p.StripeAccountID == accountID {
			return *p, nil
		}
	}
	return domain.ChefProfile{}, domain.NotFoundf("chef profile not found")
}

func (f *fakeChefs) SetStripeAccount(_ context.Context, id uuid.UUID, accountID string) error {
	for _, p := range f.byUser {
		if p.ID == id {
			p.StripeAccountID = accountID
			return nil
		}
	}
	return domain.NotFoundf("chef profile not found")
}

func (f *fakeChefs) SetStripeConnected(_ context.Context, id uuid.UUID, connected bool) error {
	for _, p := range f.byUser {
		if p.ID == id {
			p.StripeConnected = connected
			return nil
		}
	}
	return domain.NotFoundf("chef profile not found")
}

func (f *fakeChefs) GetUserEmail(_ context.Context, userID uuid.UUID) (string, error) {
	email, ok := f.emails[userID]
	if !ok {
		return "", domain.NotFoundf("user not found")
	}
	return email, nil
}

type fixture struct {
	svc      *PaymentService
	provider *fakeProvider
	orders   *fakeOrders
	life     *fakeLifecycle
	chefs    *fakeChefs

	chef     identity.Identity
	client   identity.Identity
	chefID   uuid.UUID
	orderID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	chefUserID := uuid.New()
	chefID := uuid.New()
	clientID := uuid.New()
	orderID := uuid.New()

	prov := &fakeProvider{accounts: map[string]bool{}}
	orders := &fakeOrders{
		orders: map[uuid.UUID]*domain.Order{
			orderID: {
				ID:            orderID,
				ClientID:      clientID,
				ChefID:        chefID,
				Status:        domain.StatusPlaced,
				PaymentStatus: domain.PaymentPending,
				PlatformFee:   decimal.RequireFromString("3.00"),
				TotalAmount:   decimal.RequireFromString("38.00"),
			},
		},
		intents: map[uuid.UUID]string{},
	}
	life := &fakeLifecycle{}
	chefs := &fakeChefs{
		byUser: map[uuid.UUID]*domain.ChefProfile{
			chefUserID: {ID: chefID, UserID: chefUserID, DisplayName: "Jane Chef"},
		},
		emails: map[uuid.UUID]string{chefUserID: "jane@example.com"},
	}

	cfg := config.StripeConfig{
		ReturnURL:  "http://localhost/return",
		RefreshURL: "http://localhost/refresh",
	}
	svc := NewPaymentService(prov, orders, life, chefs, cfg, logger.New("test"))

	return &fixture{
		svc:      svc,
		provider: prov,
		orders:   orders,
		life:     life,
		chefs:    chefs,
		chef:     identity.Identity{UserID: chefUserID, Role: domain.RoleChef},
		client:   identity.Identity{UserID: clientID, Role: domain.RoleClient},
		chefID:   chefID,
		orderID:  orderID,
	}
}

func (fx *fixture) connectChef(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := fx.svc.StartOnboarding(ctx, fx.chef)
	require.NoError(t, err)
	profile := fx.chefs.byUser[fx.chef.UserID]
	fx.provider.accounts[profile.StripeAccountID] = true
	_, err = fx.svc.FinishOnboarding(ctx, fx.chef)
	require.NoError(t, err)
}

func TestStartOnboardingCreatesAccountOnce(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	url1, err := fx.svc.StartOnboarding(ctx, fx.chef)
	require.NoError(t, err)
	assert.Contains(t, url1, "https://connect.example/")

	first := fx.chefs.byUser[fx.chef.UserID].StripeAccountID
	require.NotEmpty(t, first)

	_, err = fx.svc.StartOnboarding(ctx, fx.chef)
	require.NoError(t, err)
	assert.Equal(t, first, fx.chefs.byUser[fx.chef.UserID].StripeAccountID)

	_, err = fx.svc.StartOnboarding(ctx, fx.client)
	require.Error(t, err)
	assert.True(t, domain.IsAuthorization(err))
}

func TestFinishOnboarding(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.FinishOnboarding(ctx, fx.chef)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	_, err = fx.svc.StartOnboarding(ctx, fx.chef)
	require.NoError(t, err)

	status, err := fx.svc.FinishOnboarding(ctx, fx.chef)
	require.NoError(t, err)
	assert.False(t, status.Connected)

	fx.provider.accounts[fx.chefs.byUser[fx.chef.UserID].StripeAccountID] = true
	status, err = fx.svc.FinishOnboarding(ctx, fx.chef)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.True(t, fx.chefs.byUser[fx.chef.UserID].StripeConnected)
}

func TestCreateIntent(t *testing.T) {
	fx := newFixture(t)
	fx.connectChef(t)

	resp, err := fx.svc.CreateIntent(context.Background(), fx.client, fx.orderID)
	require.NoError(t, err)
	assert.Equal(t, "pi_test", resp.PaymentIntentID)
	assert.Equal(t, "pi_test_secret", resp.ClientSecret)
	assert.Equal(t, "pi_test", fx.orders.intents[fx.orderID])

	require.Len(t, fx.provider.createdIntents, 1)
	params := fx.provider.createdIntents[0]
	assert.Equal(t, int64(3800), params.Amount)
	assert.Equal(t, int64(300), params.ApplicationFee)
	assert.Equal(t, "usd", params.Currency)
	assert.Equal(t, fx.chefs.byUser[fx.chef.UserID].StripeAccountID, params.DestinationAccount)
	assert.Equal(t, fx.orderID.String(), params.Metadata["order_id"])
}

func TestCreateIntentGuards(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	// chef not connected yet
	_, err := fx.svc.CreateIntent(ctx, fx.client, fx.orderID)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	fx.connectChef(t)

	// someone else's order
	stranger := identity.Identity{UserID: uuid.New(), Role: domain.RoleClient}
	_, err = fx.svc.CreateIntent(ctx, stranger, fx.orderID)
	require.Error(t, err)
	assert.True(t, domain.IsAuthorization(err))

	// wrong lifecycle state
	fx.orders.orders[fx.orderID].Status = domain.StatusConfirmed
	_, err = fx.svc.CreateIntent(ctx, fx.client, fx.orderID)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	// already paid
	fx.orders.orders[fx.orderID].Status = domain.StatusPlaced
	fx.orders.orders[fx.orderID].PaymentStatus = domain.PaymentPaid
	_, err = fx.svc.CreateIntent(ctx, fx.client, fx.orderID)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestHandleWebhookPaymentSucceeded(t *testing.T) {
	fx := newFixture(t)
	fx.provider.webhookEvent = provider.WebhookEvent{
		Type:            provider.EventPaymentSucceeded,
		PaymentIntentID: "pi_test",
		OrderID:         fx.orderID.String(),
	}

	require.NoError(t, fx.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	require.Len(t, fx.life.paid, 1)
	assert.Equal(t, fx.orderID, fx.life.paid[0])
}

func TestHandleWebhookPaymentFailed(t *testing.T) {
	fx := newFixture(t)
	fx.provider.webhookEvent = provider.WebhookEvent{
		Type:            provider.EventPaymentFailed,
		PaymentIntentID: "pi_test",
		OrderID:         fx.orderID.String(),
	}

	require.NoError(t, fx.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	require.Len(t, fx.life.failed, 1)
	assert.Equal(t, fx.orderID, fx.life.failed[0])
}

func TestHandleWebhookAccountUpdated(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_, err := fx.svc.StartOnboarding(ctx, fx.chef)
	require.NoError(t, err)
	accountID := fx.chefs.byUser[fx.chef.UserID].StripeAccountID

	fx.provider.webhookEvent = provider.WebhookEvent{
		Type:           provider.EventAccountUpdated,
		AccountID:      accountID,
		ChargesEnabled: true,
		PayoutsEnabled: true,
	}
	require.NoError(t, fx.svc.HandleWebhook(ctx, []byte("{}"), "sig"))
	assert.True(t, fx.chefs.byUser[fx.chef.UserID].StripeConnected)

	// an unknown connected account is ignored
	fx.provider.webhookEvent.AccountID = "acct_unknown"
	require.NoError(t, fx.svc.HandleWebhook(ctx, []byte("{}"), "sig"))
}

func TestHandleWebhookBadSignature(t *testing.T) {
	fx := newFixture(t)
	fx.provider.webhookErr = domain.Validationf("webhook verification failed")

	err := fx.svc.HandleWebhook(context.Background(), []byte("{}"), "bad")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, fx.life.paid)
}

func TestHandleWebhookUnknownTypeIgnored(t *testing.T) {
	fx := newFixture(t)
	fx.provider.webhookEvent = provider.WebhookEvent{Type: "charge.refunded"}

	require.NoError(t, fx.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Empty(t, fx.life.paid)
	assert.Empty(t, fx.life.failed)
}
