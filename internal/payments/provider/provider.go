package provider

import "context"

// Webhook event types the platform reacts to. Anything else is logged and
// ignored.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventAccountUpdated   = "account.updated"
)

type IntentParams struct {
	Amount             int64 // cents
	Currency           string
	ApplicationFee     int64 // cents, the platform's share
	DestinationAccount string
	Metadata           map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
}

// WebhookEvent is the provider-neutral view of a verified webhook payload.
type WebhookEvent struct {
	Type            string
	PaymentIntentID string
	OrderID         string

	AccountID      string
	ChargesEnabled bool
	PayoutsEnabled bool
}

// Provider is the payment-processor port. The processor itself is an
// external collaborator; the core only creates intents, onboards connected
// accounts and reacts to verified webhook events.
type Provider interface {
	CreateExpressAccount(ctx context.Context, email string) (string, error)
	AccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	AccountStatus(ctx context.Context, accountID string) (chargesEnabled, payoutsEnabled bool, err error)
	CreateIntent(ctx context.Context, p IntentParams) (Intent, error)

	// ParseWebhook verifies the payload signature before anything else. A bad
	// signature is a ValidationError and the payload is never interpreted.
	ParseWebhook(payload []byte, signature string) (WebhookEvent, error)
}
