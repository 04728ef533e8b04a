package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/matehackers/badges-engine/core"
	"github.com/matehackers/badges-engine/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAssertionStore exercises the behaviour every AssertionStore must provide
func testAssertionStore(t *testing.T, newStore func(t *testing.T) ports.AssertionStore) {
	ctx := context.Background()

	t.Run("create assigns id and round trips", func(t *testing.T) {
		s := newStore(t)
		a := &core.Assertion{
			BadgeID:  "1",
			UserID:   "42",
			Token:    "tok",
			Evidence: "https://example.org/e",
			Expires:  "2030-01-01",
			IssuedOn: "2024-01-01",
		}
		require.NoError(t, s.Create(ctx, a))
		require.NotEmpty(t, a.ID)

		got, err := s.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a, got)
		assert.False(t, got.IsBaked)

		found, err := s.FindByBadgeAndUser(ctx, "1", "42")
		require.NoError(t, err)
		assert.Equal(t, a.ID, found.ID)
	})

	t.Run("unknown ids", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, core.ErrNotFound)

		_, err = s.FindByBadgeAndUser(ctx, "1", "42")
		assert.ErrorIs(t, err, core.ErrNotFound)

		_, err = s.MarkBaked(ctx, "missing")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("one assertion per badge and user", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, &core.Assertion{BadgeID: "1", UserID: "42", Token: "a"}))

		err := s.Create(ctx, &core.Assertion{BadgeID: "1", UserID: "42", Token: "b"})
		assert.ErrorIs(t, err, core.ErrAssertionExists)

		// Same user, other badge is fine
		require.NoError(t, s.Create(ctx, &core.Assertion{BadgeID: "2", UserID: "42", Token: "c"}))
	})

	t.Run("concurrent creates for the same pair", func(t *testing.T) {
		s := newStore(t)

		const attempts = 8
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = s.Create(ctx, &core.Assertion{BadgeID: "1", UserID: "42", Token: string(rune('a' + i))})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, core.ErrAssertionExists)
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("mark baked only flips once", func(t *testing.T) {
		s := newStore(t)
		a := &core.Assertion{BadgeID: "1", UserID: "42", Token: "tok", Evidence: "e"}
		require.NoError(t, s.Create(ctx, a))

		flipped, err := s.MarkBaked(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, flipped)

		flipped, err = s.MarkBaked(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, flipped)

		got, err := s.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, got.IsBaked)
		assert.Equal(t, "tok", got.Token, "token untouched")
		assert.Equal(t, "e", got.Evidence)
	})

	t.Run("concurrent mark baked has one winner", func(t *testing.T) {
		s := newStore(t)
		a := &core.Assertion{BadgeID: "1", UserID: "42", Token: "tok"}
		require.NoError(t, s.Create(ctx, a))

		const attempts = 8
		var wg sync.WaitGroup
		results := make([]bool, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				flipped, err := s.MarkBaked(ctx, a.ID)
				assert.NoError(t, err)
				results[i] = flipped
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, flipped := range results {
			if flipped {
				winners++
			}
		}
		assert.Equal(t, 1, winners)
	})
}
