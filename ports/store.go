package ports

import (
	"context"

	"github.com/matehackers/badges-engine/core"
)

// AssertionStore persists assertions
type AssertionStore interface {
	// Create assigns an ID and stores the assertion. It returns core.ErrAssertionExists
	// when an assertion already exists for the same badge and user.
	Create(ctx context.Context, assertion *core.Assertion) error

	// Get returns core.ErrNotFound for unknown IDs
	Get(ctx context.Context, id string) (*core.Assertion, error)

	// FindByBadgeAndUser returns core.ErrNotFound when the user has not been awarded the badge
	FindByBadgeAndUser(ctx context.Context, badgeID, userID string) (*core.Assertion, error)

	// MarkBaked flips is_baked from false to true and reports whether this call did the flip
	MarkBaked(ctx context.Context, id string) (bool, error)
}

// BadgeRepository reads badges owned by the host application
type BadgeRepository interface {
	Get(ctx context.Context, id string) (core.Badge, error)
}

// EmailResolver looks up the email of a host application user
type EmailResolver interface {
	// ResolveEmail returns core.ErrNotFound when the user is unknown
	ResolveEmail(ctx context.Context, userID string) (string, error)
}
