package notifications

import (
	"context"

	"github.com/google/uuid"

	"teka/internal/common/logger"
)

// Event kinds mirror the handler names the realtime consumers dispatch on.
const (
	KindNewOrder          = "new_order"
	KindOrderStatusUpdate = "order_status_update"
	KindOrderNotification = "order_notification"
)

// Event is one realtime notification addressed to a single channel.
type Event struct {
	Kind        string `json:"type"`
	Message     string `json:"message"`
	OrderID     string `json:"order_id,omitempty"`
	Status      string `json:"status,omitempty"`
	ChefName    string `json:"chef_name,omitempty"`
	ClientName  string `json:"client_name,omitempty"`
	TotalAmount string `json:"total_amount,omitempty"`
}

// Channel ids. Delivery, connection management and subscriber auth belong to
// the channel layer behind the Publisher; the core only names destinations.

func ChefChannel(userID uuid.UUID) string { return "chef." + userID.String() }

func ClientChannel(userID uuid.UUID) string { return "client." + userID.String() }

func UserChannel(userID uuid.UUID) string { return "user." + userID.String() }

// Publisher is the one-method port to the channel layer.
type Publisher interface {
	Publish(ctx context.Context, channel string, ev Event) error
}

// Notifier makes publishing fire-and-forget: failures are logged and
// swallowed, never surfaced to the caller. Notification is advisory; a state
// change must never be rolled back because its notification was dropped.
type Notifier struct {
	pub Publisher
	log *logger.Logger
}

func NewNotifier(pub Publisher, log *logger.Logger) *Notifier {
	return &Notifier{pub: pub, log: log}
}

func (n *Notifier) Notify(ctx context.Context, channel string, ev Event) {
	if err := n.pub.Publish(ctx, channel, ev); err != nil {
		n.log.Error("notification_publish_failed", err, map[string]any{
			"channel": channel,
			"type":    ev.Kind,
		})
	}
}
