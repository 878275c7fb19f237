package provider

import (
	"context"
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/account"
	"github.com/stripe/stripe-go/v76/accountlink"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"

	"teka/internal/domain"
)

// StripeProvider implements Provider against Stripe Connect.
type StripeProvider struct {
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{webhookSecret: webhookSecret}
}

func (p *StripeProvider) CreateExpressAccount(_ context.Context, email string) (string, error) {
	acct, err := account.New(&stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create express account: %w", err)
	}
	return acct.ID, nil
}

func (p *StripeProvider) AccountLink(_ context.Context, accountID, refreshURL, returnURL string) (string, error) {
	link, err := accountlink.New(&stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return "", fmt.Errorf("create account link: %w", err)
	}
	return link.URL, nil
}

func (p *StripeProvider) AccountStatus(_ context.Context, accountID string) (bool, bool, error) {
	acct, err := account.GetByID(accountID, nil)
	if err != nil {
		return false, false, fmt.Errorf("retrieve account: %w", err)
	}
	return acct.ChargesEnabled, acct.PayoutsEnabled, nil
}

func (p *StripeProvider) CreateIntent(_ context.Context, params IntentParams) (Intent, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(params.Amount),
		Currency:             stripe.String(params.Currency),
		ApplicationFeeAmount: stripe.Int64(params.ApplicationFee),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(params.DestinationAccount),
		},
	}
	for k, v := range params.Metadata {
		piParams.AddMetadata(k, v)
	}
	pi, err := paymentintent.New(piParams)
	if err != nil {
		return Intent{}, fmt.Errorf("create payment intent: %w", err)
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return WebhookEvent{}, domain.Validationf("webhook verification failed: %v", err)
	}

	out := WebhookEvent{Type: string(event.Type)}
	switch out.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return WebhookEvent{}, fmt.Errorf("decode payment intent: %w", err)
		}
		out.PaymentIntentID = pi.ID
		out.OrderID = pi.Metadata["order_id"]
	case EventAccountUpdated:
		var acct stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
			return WebhookEvent{}, fmt.Errorf("decode account: %w", err)
		}
		out.AccountID = acct.ID
		out.ChargesEnabled = acct.ChargesEnabled
		out.PayoutsEnabled = acct.PayoutsEnabled
	}
	return out, nil
}
