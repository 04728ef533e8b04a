package ports

import (
	"context"

	"github.com/matehackers/badges-engine/core"
)

// EventPublisher notifies other services about assertion lifecycle changes
type EventPublisher interface {
	PublishCreated(ctx context.Context, assertion *core.Assertion) error
	PublishBaked(ctx context.Context, assertion *core.Assertion) error
}
