package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/matehackers/badges-engine/core"
	"github.com/matehackers/badges-engine/ports"
)

const (
	// TopicAssertionCreated receives an AssertionEvent for every new assertion
	TopicAssertionCreated = "badges.assertion.created"
	// TopicAssertionBaked receives an AssertionEvent once an assertion is baked
	TopicAssertionBaked = "badges.assertion.baked"
)

// AssertionEvent represents an assertion lifecycle event
type AssertionEvent struct {
	AssertionID string    `json:"assertion_id"`
	BadgeID     string    `json:"badge_id"`
	UserID      string    `json:"user_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishCreated publishes an assertion created event
func (p *WatermillPublisher) PublishCreated(ctx context.Context, assertion *core.Assertion) error {
	return p.publish(ctx, TopicAssertionCreated, assertion)
}

// PublishBaked publishes an assertion baked event
func (p *WatermillPublisher) PublishBaked(ctx context.Context, assertion *core.Assertion) error {
	return p.publish(ctx, TopicAssertionBaked, assertion)
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, assertion *core.Assertion) error {
	event := AssertionEvent{
		AssertionID: assertion.ID,
		BadgeID:     assertion.BadgeID,
		UserID:      assertion.UserID,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
