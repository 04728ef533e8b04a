package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/matehackers/badges-engine/core"
	"github.com/matehackers/badges-engine/ports"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "badges:"

// createScript reserves the (badge, user) pair and writes the assertion hash in one step
var createScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[2], unpack(ARGV, 2))
return 1
`)

// markBakedScript returns -1 for a missing assertion, 0 if already baked, 1 if flipped
var markBakedScript = redis.NewScript(`
local baked = redis.call('HGET', KEYS[1], 'is_baked')
if not baked then
	return -1
end
if baked == '1' then
	return 0
end
redis.call('HSET', KEYS[1], 'is_baked', '1')
return 1
`)

// RedisStore is a Redis implementation of the AssertionStore interface
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) ports.AssertionStore {
	return &RedisStore{
		client: client,
		prefix: defaultRedisPrefix,
	}
}

func (s *RedisStore) assertionKey(id string) string {
	return s.prefix + "assertion:" + id
}

// pairKey lives outside the assertion namespace and is length-prefixed so IDs containing ':' cannot collide
func (s *RedisStore) pairKey(badgeID, userID string) string {
	return fmt.Sprintf("%spair:%d:%s:%s", s.prefix, len(badgeID), badgeID, userID)
}

// Create stores the assertion under a new ID
func (s *RedisStore) Create(ctx context.Context, assertion *core.Assertion) error {
	id := uuid.New().String()

	args := []interface{}{
		id,
		"id", id,
		"badge_id", assertion.BadgeID,
		"user_id", assertion.UserID,
		"token", assertion.Token,
		"is_baked", "0",
		"evidence", assertion.Evidence,
		"expires", assertion.Expires,
		"issued_on", assertion.IssuedOn,
	}
	keys := []string{s.pairKey(assertion.BadgeID, assertion.UserID), s.assertionKey(id)}

	created, err := createScript.Run(ctx, s.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("failed to create assertion: %w", err)
	}
	if created == 0 {
		return core.ErrAssertionExists
	}

	assertion.ID = id
	return nil
}

// Get loads an assertion hash
func (s *RedisStore) Get(ctx context.Context, id string) (*core.Assertion, error) {
	fields, err := s.client.HGetAll(ctx, s.assertionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get assertion: %w", err)
	}
	if len(fields) == 0 {
		return nil, core.ErrNotFound
	}

	return &core.Assertion{
		ID:       fields["id"],
		BadgeID:  fields["badge_id"],
		UserID:   fields["user_id"],
		Token:    fields["token"],
		IsBaked:  fields["is_baked"] == "1",
		Evidence: fields["evidence"],
		Expires:  fields["expires"],
		IssuedOn: fields["issued_on"],
	}, nil
}

// FindByBadgeAndUser resolves the pair index and loads the assertion
func (s *RedisStore) FindByBadgeAndUser(ctx context.Context, badgeID, userID string) (*core.Assertion, error) {
	id, err := s.client.Get(ctx, s.pairKey(badgeID, userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find assertion: %w", err)
	}
	return s.Get(ctx, id)
}

// MarkBaked flips is_baked atomically on the server
func (s *RedisStore) MarkBaked(ctx context.Context, id string) (bool, error) {
	res, err := markBakedScript.Run(ctx, s.client, []string{s.assertionKey(id)}).Int()
	if err != nil {
		return false, fmt.Errorf("failed to mark assertion baked: %w", err)
	}

	switch res {
	case -1:
		return false, core.ErrNotFound
	case 1:
		return true, nil
	default:
		return false, nil
	}
}

// RedisBadges reads badges stored as hashes under badges:badge:<id>
type RedisBadges struct {
	client *redis.Client
	prefix string
}

// NewRedisBadges creates a Redis badge repository
func NewRedisBadges(client *redis.Client) *RedisBadges {
	return &RedisBadges{client: client, prefix: defaultRedisPrefix}
}

func (r *RedisBadges) key(id string) string {
	return r.prefix + "badge:" + id
}

// Put writes a badge hash
func (r *RedisBadges) Put(ctx context.Context, badge core.Badge) error {
	err := r.client.HSet(ctx, r.key(badge.ID), map[string]interface{}{
		"version":        badge.Version,
		"name":           badge.Name,
		"image":          badge.Image,
		"description":    badge.Description,
		"criteria":       badge.Criteria,
		"issuer_origin":  badge.Issuer.Origin,
		"issuer_name":    badge.Issuer.Name,
		"issuer_org":     badge.Issuer.Org,
		"issuer_contact": badge.Issuer.Contact,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to store badge: %w", err)
	}
	return nil
}

// Get loads a badge hash
func (r *RedisBadges) Get(ctx context.Context, id string) (core.Badge, error) {
	fields, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return core.Badge{}, fmt.Errorf("failed to get badge: %w", err)
	}
	if len(fields) == 0 {
		return core.Badge{}, core.ErrNotFound
	}

	return core.Badge{
		ID:          id,
		Version:     fields["version"],
		Name:        fields["name"],
		Image:       fields["image"],
		Description: fields["description"],
		Criteria:    fields["criteria"],
		Issuer: core.Issuer{
			Origin:  fields["issuer_origin"],
			Name:    fields["issuer_name"],
			Org:     fields["issuer_org"],
			Contact: fields["issuer_contact"],
		},
	}, nil
}

// RedisUsers resolves emails stored as badges:user:<id> -> email
type RedisUsers struct {
	client *redis.Client
	prefix string
}

// NewRedisUsers creates a Redis email resolver
func NewRedisUsers(client *redis.Client) *RedisUsers {
	return &RedisUsers{client: client, prefix: defaultRedisPrefix}
}

// Put records a user's email
func (u *RedisUsers) Put(ctx context.Context, userID, email string) error {
	if err := u.client.Set(ctx, u.prefix+"user:"+userID, email, 0).Err(); err != nil {
		return fmt.Errorf("failed to store user email: %w", err)
	}
	return nil
}

// ResolveEmail returns the stored email for the user
func (u *RedisUsers) ResolveEmail(ctx context.Context, userID string) (string, error) {
	email, err := u.client.Get(ctx, u.prefix+"user:"+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrNotFound
		}
		return "", fmt.Errorf("failed to resolve email: %w", err)
	}
	return email, nil
}

