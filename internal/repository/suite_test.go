package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/carbon-footprint-tracker/internal/model"
	"github.com/iliyamo/carbon-footprint-tracker/internal/repository"
)

// runStoreSuite exercises the UserStore and ActivityStore contracts against
// one backend. Every backend must pass it unchanged.
func runStoreSuite(t *testing.T, stores *repository.Stores) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and find user", func(t *testing.T) {
		u, err := stores.Users.Create(ctx, "  Alice@Example.com ", "hash-a")
		require.NoError(t, err)
		require.NotEmpty(t, u.ID)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.False(t, u.CreatedAt.IsZero())

		byEmail, err := stores.Users.FindByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
		assert.Equal(t, "hash-a", byEmail.PasswordHash)

		byID, err := stores.Users.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := stores.Users.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = stores.Users.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := stores.Users.Create(ctx, "dup@example.com", "h1")
		require.NoError(t, err)

		_, err = stores.Users.Create(ctx, "DUP@example.com", "h2")
		assert.ErrorIs(t, err, repository.ErrEmailExists)

		u, err := stores.Users.FindByEmail(ctx, "dup@example.com")
		require.NoError(t, err)
		assert.Equal(t, "h1", u.PasswordHash)
	})

	t.Run("concurrent duplicate email", func(t *testing.T) {
		const n = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
			dups    int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := stores.Users.Create(ctx, "race@example.com", "h")
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case assert.ErrorIs(t, err, repository.ErrEmailExists):
					dups++
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, created)
		assert.Equal(t, n-1, dups)
	})

	t.Run("activities by owner", func(t *testing.T) {
		owner, err := stores.Users.Create(ctx, "owner@example.com", "h")
		require.NoError(t, err)
		other, err := stores.Users.Create(ctx, "other@example.com", "h")
		require.NoError(t, err)

		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		mine := []*model.Activity{
			{UserID: owner.ID, Type: "transport", Value: 10, Unit: "km", Carbon: 2, Timestamp: base},
			{UserID: owner.ID, Type: "food", Value: 1, Unit: "kg", Carbon: 2.5, Timestamp: base.Add(time.Minute)},
		}
		for _, a := range mine {
			require.NoError(t, stores.Activities.Create(ctx, a))
			assert.NotEmpty(t, a.ID)
		}
		require.NoError(t, stores.Activities.Create(ctx, &model.Activity{
			UserID: other.ID, Type: "electricity", Value: 4, Unit: "kWh", Carbon: 2,
		}))

		got, err := stores.Activities.ListByOwner(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, mine[0].ID, got[0].ID)
		assert.Equal(t, "transport", got[0].Type)
		assert.Equal(t, 10.0, got[0].Value)
		assert.Equal(t, "km", got[0].Unit)
		assert.Equal(t, 2.0, got[0].Carbon)
		assert.True(t, base.Equal(got[0].Timestamp), "timestamp %v", got[0].Timestamp)
		assert.Equal(t, mine[1].ID, got[1].ID)

		none, err := stores.Activities.ListByOwner(ctx, "no-such-user")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("default timestamp", func(t *testing.T) {
		owner, err := stores.Users.Create(ctx, "clock@example.com", "h")
		require.NoError(t, err)

		before := time.Now().Add(-time.Second)
		a := &model.Activity{UserID: owner.ID, Type: "water", Value: 3, Unit: "l", Carbon: 3}
		require.NoError(t, stores.Activities.Create(ctx, a))
		assert.True(t, a.Timestamp.After(before))
		assert.Equal(t, time.UTC, a.Timestamp.Location())
	})

	t.Run("list users", func(t *testing.T) {
		users, err := stores.Users.List(ctx)
		require.NoError(t, err)
		emails := make(map[string]bool, len(users))
		for _, u := range users {
			emails[u.Email] = true
		}
		for _, e := range []string{"alice@example.com", "dup@example.com", "owner@example.com", "other@example.com"} {
			assert.True(t, emails[e], "missing %s", e)
		}
	})
}
