package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"teka/internal/connections/rabbitmq"
)

// AMQPPublisher publishes events to the notifications topic exchange with the
// channel id as routing key.
type AMQPPublisher struct {
	client *rabbitmq.Client
}

func NewAMQPPublisher(client *rabbitmq.Client) *AMQPPublisher {
	return &AMQPPublisher{client: client}
}

func (p *AMQPPublisher) Publish(ctx context.Context, channel string, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	headers := amqp.Table{"x-source": "teka-server"}
	if err := p.client.Publish(ctx, rabbitmq.NotificationsExchange, channel, body, headers); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
