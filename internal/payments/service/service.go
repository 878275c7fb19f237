package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"teka/internal/common/identity"
	"teka/internal/common/logger"
	"teka/internal/config"
	"teka/internal/domain"
	"teka/internal/payments/provider"
)

// OrderLifecycle is the slice of the order service that reacts to payment
// outcomes.
type OrderLifecycle interface {
	MarkPaid(ctx context.Context, orderID uuid.UUID, intentID string) error
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error
}

// Orders reads order state for intent creation.
type Orders interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error)
	SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error
}

// ChefAccounts is the slice of the chef repository the payments flow needs:
// connected-account bookkeeping and the email used to open one.
type ChefAccounts interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.ChefProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (domain.ChefProfile, error)
	GetByStripeAccount(ctx context.Context, accountID string) (domain.ChefProfile, error)
	SetStripeAccount(ctx context.Context, id uuid.UUID, accountID string) error
	SetStripeConnected(ctx context.Context, id uuid.UUID, connected bool) error
	GetUserEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

type IntentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
}

type OnboardingStatus struct {
	Connected bool `json:"connected"`
}

type PaymentServiceInterface interface {
	StartOnboarding(ctx context.Context, actor identity.Identity) (string, error)
	FinishOnboarding(ctx context.Context, actor identity.Identity) (OnboardingStatus, error)
	CreateIntent(ctx context.Context, actor identity.Identity, orderID uuid.UUID) (IntentResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// PaymentService bridges orders to the payment processor. Money moves
// directly to the chef's connected account; the platform keeps its fee as the
// application fee on the intent.
type PaymentService struct {
	provider provider.Provider
	orders   Orders
	life     OrderLifecycle
	chefs    ChefAccounts
	cfg      config.StripeConfig
	log      *logger.Logger
}

func NewPaymentService(p provider.Provider, orders Orders, life OrderLifecycle,
	chefs ChefAccounts, cfg config.StripeConfig, log *logger.Logger) *PaymentService {
	return &PaymentService{
		provider: p,
		orders:   orders,
		life:     life,
		chefs:    chefs,
		cfg:      cfg,
		log:      log,
	}
}

func (s *PaymentService) StartOnboarding(ctx context.Context, actor identity.Identity) (string, error) {
	if actor.Role != domain.RoleChef {
		return "", domain.Authorizationf("only chefs can onboard for payouts")
	}
	profile, err := s.chefs.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return "", err
	}

	accountID := profile.StripeAccountID
	if accountID == "" {
		email, err := s.chefs.GetUserEmail(ctx, actor.UserID)
		if err != nil {
			return "", err
		}
		accountID, err = s.provider.CreateExpressAccount(ctx, email)
		if err != nil {
			return "", fmt.Errorf("create connected account: %w", err)
		}
		if err := s.chefs.SetStripeAccount(ctx, profile.ID, accountID); err != nil {
			return "", err
		}
		s.log.Info("stripe_account_created", map[string]any{
			"chef_id":    profile.ID.String(),
			"account_id": accountID,
		})
	}

	url, err := s.provider.AccountLink(ctx, accountID, s.cfg.RefreshURL, s.cfg.ReturnURL)
	if err != nil {
		return "", fmt.Errorf("create onboarding link: %w", err)
	}
	return url, nil
}

func (s *PaymentService) FinishOnboarding(ctx context.Context, actor identity.Identity) (OnboardingStatus, error) {
	if actor.Role != domain.RoleChef {
		return OnboardingStatus{}, domain.Authorizationf("only chefs can onboard for payouts")
	}
	profile, err := s.chefs.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return OnboardingStatus{}, err
	}
	if profile.StripeAccountID == "" {
		return OnboardingStatus{}, domain.Conflictf("onboarding has not been started")
	}

	charges, payouts, err := s.provider.AccountStatus(ctx, profile.StripeAccountID)
	if err != nil {
		return OnboardingStatus{}, fmt.Errorf("check account status: %w", err)
	}
	connected := charges && payouts
	if err := s.chefs.SetStripeConnected(ctx, profile.ID, connected); err != nil {
		return OnboardingStatus{}, err
	}
	return OnboardingStatus{Connected: connected}, nil
}

func (s *PaymentService) CreateIntent(ctx context.Context, actor identity.Identity, orderID uuid.UUID) (IntentResponse, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return IntentResponse{}, err
	}
	if actor.Role != domain.RoleAdmin && order.ClientID != actor.UserID {
		return IntentResponse{}, domain.Authorizationf("order belongs to another client")
	}
	if order.Status != domain.StatusPlaced {
		return IntentResponse{}, domain.Conflictf("order %s is %s, payment is only possible while placed", order.ShortID(), order.Status)
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return IntentResponse{}, domain.Conflictf("order %s is already paid", order.ShortID())
	}

	chef, err := s.chefs.GetByID(ctx, order.ChefID)
	if err != nil {
		return IntentResponse{}, err
	}
	if !chef.StripeConnected || chef.StripeAccountID == "" {
		return IntentResponse{}, domain.Conflictf("chef has not completed payment onboarding")
	}

	intent, err := s.provider.CreateIntent(ctx, provider.IntentParams{
		Amount:             toCents(order.TotalAmount),
		Currency:           "usd",
		ApplicationFee:     toCents(order.PlatformFee),
		DestinationAccount: chef.StripeAccountID,
		Metadata: map[string]string{
			"order_id":  order.ID.String(),
			"chef_id":   order.ChefID.String(),
			"client_id": order.ClientID.String(),
		},
	})
	if err != nil {
		return IntentResponse{}, fmt.Errorf("create payment intent: %w", err)
	}

	if err := s.orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return IntentResponse{}, err
	}
	s.log.Info("payment_intent_created", map[string]any{
		"order_id":  order.ID.String(),
		"intent_id": intent.ID,
	})
	return IntentResponse{PaymentIntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	switch ev.Type {
	case provider.EventPaymentSucceeded:
		orderID, err := uuid.Parse(ev.OrderID)
		if err != nil {
			return domain.Validationf("webhook payment intent %s carries no order id", ev.PaymentIntentID)
		}
		if err := s.life.MarkPaid(ctx, orderID, ev.PaymentIntentID); err != nil {
			return err
		}
		s.log.Info("payment_succeeded", map[string]any{
			"order_id":  orderID.String(),
			"intent_id": ev.PaymentIntentID,
		})

	case provider.EventPaymentFailed:
		orderID, err := uuid.Parse(ev.OrderID)
		if err != nil {
			return domain.Validationf("webhook payment intent %s carries no order id", ev.PaymentIntentID)
		}
		if err := s.life.MarkPaymentFailed(ctx, orderID); err != nil {
			return err
		}
		s.log.Info("payment_failed", map[string]any{
			"order_id":  orderID.String(),
			"intent_id": ev.PaymentIntentID,
		})

	case provider.EventAccountUpdated:
		profile, err := s.chefs.GetByStripeAccount(ctx, ev.AccountID)
		if err != nil {
			if domain.IsNotFound(err) {
				s.log.Debug("webhook_unknown_account", map[string]any{"account_id": ev.AccountID})
				return nil
			}
			return err
		}
		connected := ev.ChargesEnabled && ev.PayoutsEnabled
		if err := s.chefs.SetStripeConnected(ctx, profile.ID, connected); err != nil {
			return err
		}

	default:
		s.log.Debug("webhook_ignored", map[string]any{"type": ev.Type})
	}
	return nil
}

func toCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
