package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/matehackers/badges-engine/adapters/events"
	"github.com/matehackers/badges-engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillPublisher(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	created, err := pubSub.Subscribe(ctx, events.TopicAssertionCreated)
	require.NoError(t, err)
	baked, err := pubSub.Subscribe(ctx, events.TopicAssertionBaked)
	require.NoError(t, err)

	p := events.NewWatermillPublisher(pubSub)
	a := &core.Assertion{ID: "abc", BadgeID: "1", UserID: "42", Token: "secret"}

	require.NoError(t, p.PublishCreated(ctx, a))
	require.NoError(t, p.PublishBaked(ctx, a))

	for _, ch := range []<-chan *message.Message{created, baked} {
		select {
		case msg := <-ch:
			var event events.AssertionEvent
			require.NoError(t, json.Unmarshal(msg.Payload, &event))
			assert.Equal(t, "abc", event.AssertionID)
			assert.Equal(t, "1", event.BadgeID)
			assert.Equal(t, "42", event.UserID)
			assert.False(t, event.OccurredAt.IsZero())
			assert.NotContains(t, string(msg.Payload), "secret")
			msg.Ack()
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}
