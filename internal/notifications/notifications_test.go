package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"teka/internal/common/logger"
)

type recordingPublisher struct {
	channels []string
	events   []Event
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, ev Event) error {
	p.channels = append(p.channels, channel)
	p.events = append(p.events, ev)
	return p.err
}

func TestChannelNames(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	assert.Equal(t, "chef.a1b2c3d4-0000-0000-0000-000000000000", ChefChannel(id))
	assert.Equal(t, "client.a1b2c3d4-0000-0000-0000-000000000000", ClientChannel(id))
	assert.Equal(t, "user.a1b2c3d4-0000-0000-0000-000000000000", UserChannel(id))
}

func TestNotifyDelivers(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewNotifier(pub, logger.New("test"))

	n.Notify(context.Background(), "chef.abc", Event{Kind: KindNewOrder, Message: "New order!"})

	assert.Equal(t, []string{"chef.abc"}, pub.channels)
	assert.Equal(t, KindNewOrder, pub.events[0].Kind)
}

func TestNotifySwallowsPublishErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	n := NewNotifier(pub, logger.New("test"))

	// must not panic or propagate
	n.Notify(context.Background(), "client.abc", Event{Kind: KindOrderStatusUpdate})
	assert.Len(t, pub.events, 1)
}
