package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/matehackers/badges-engine/core"
	"github.com/matehackers/badges-engine/ports"
)

type pairKey struct {
	badgeID string
	userID  string
}

// MemoryStore is an in-memory implementation of the AssertionStore interface
type MemoryStore struct {
	assertions map[string]core.Assertion
	byPair     map[pairKey]string
	mu         sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() ports.AssertionStore {
	return &MemoryStore{
		assertions: make(map[string]core.Assertion),
		byPair:     make(map[pairKey]string),
	}
}

// Create stores the assertion under a new ID
func (s *MemoryStore) Create(ctx context.Context, assertion *core.Assertion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{badgeID: assertion.BadgeID, userID: assertion.UserID}
	if _, exists := s.byPair[key]; exists {
		return core.ErrAssertionExists
	}

	assertion.ID = uuid.New().String()
	s.assertions[assertion.ID] = *assertion
	s.byPair[key] = assertion.ID

	return nil
}

// Get returns a copy of the stored assertion
func (s *MemoryStore) Get(ctx context.Context, id string) (*core.Assertion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assertions[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &a, nil
}

// FindByBadgeAndUser looks an assertion up by its unique pair
func (s *MemoryStore) FindByBadgeAndUser(ctx context.Context, badgeID, userID string) (*core.Assertion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPair[pairKey{badgeID: badgeID, userID: userID}]
	if !ok {
		return nil, core.ErrNotFound
	}
	a := s.assertions[id]
	return &a, nil
}

// MarkBaked flips the baked flag if it is still unset
func (s *MemoryStore) MarkBaked(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assertions[id]
	if !ok {
		return false, core.ErrNotFound
	}
	if a.IsBaked {
		return false, nil
	}

	a.IsBaked = true
	s.assertions[id] = a
	return true, nil
}

// MemoryBadges is an in-memory BadgeRepository
type MemoryBadges struct {
	badges map[string]core.Badge
	mu     sync.RWMutex
}

// NewMemoryBadges creates a repository holding the given badges
func NewMemoryBadges(badges ...core.Badge) *MemoryBadges {
	r := &MemoryBadges{badges: make(map[string]core.Badge)}
	for _, b := range badges {
		r.badges[b.ID] = b
	}
	return r
}

// Put adds or replaces a badge
func (r *MemoryBadges) Put(badge core.Badge) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.badges[badge.ID] = badge
}

// Get returns the badge with the given ID
func (r *MemoryBadges) Get(ctx context.Context, id string) (core.Badge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.badges[id]
	if !ok {
		return core.Badge{}, core.ErrNotFound
	}
	return b, nil
}

// MemoryUsers is an in-memory EmailResolver keyed by user ID
type MemoryUsers struct {
	emails map[string]string
	mu     sync.RWMutex
}

// NewMemoryUsers creates a resolver from a user ID to email map
func NewMemoryUsers(emails map[string]string) *MemoryUsers {
	u := &MemoryUsers{emails: make(map[string]string, len(emails))}
	for id, email := range emails {
		u.emails[id] = email
	}
	return u
}

// Put adds or replaces a user's email
func (u *MemoryUsers) Put(userID, email string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.emails[userID] = email
}

// ResolveEmail returns the email registered for the user
func (u *MemoryUsers) ResolveEmail(ctx context.Context, userID string) (string, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	email, ok := u.emails[userID]
	if !ok {
		return "", core.ErrNotFound
	}
	return email, nil
}
