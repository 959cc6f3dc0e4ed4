package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/carbon-footprint-tracker/internal/repository"
	"github.com/iliyamo/carbon-footprint-tracker/internal/service"
	"github.com/iliyamo/carbon-footprint-tracker/internal/utils"
)

func newTestAuthService(t *testing.T, opts ...service.AuthOption) (*service.AuthService, *repository.Stores) {
	t.Helper()
	stores := newTestStores(t)
	auth, err := service.NewAuthService(stores.Users, testSecret, testCost, nil, opts...)
	require.NoError(t, err)
	return auth, stores
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	_, err := service.NewAuthService(nil, "", testCost, nil)
	assert.Error(t, err)
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	pub := &recordingPublisher{}
	auth, _ := newTestAuthService(t, service.WithPublisher(pub))
	ctx := context.Background()

	u, err := auth.Register(ctx, "new@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "password123", u.PasswordHash)

	tok, got, err := auth.Login(ctx, "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	sub, err := auth.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)

	require.Len(t, pub.registered, 1)
	assert.Equal(t, u.ID, pub.registered[0].UserID)
}

func TestAuthService_RegisterMissingFields(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	for _, tc := range []struct{ email, password string }{
		{"", "pw"},
		{"   ", "pw"},
		{"a@example.com", ""},
	} {
		_, err := auth.Register(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, service.ErrMissingField, "%q/%q", tc.email, tc.password)
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	auth, stores := newTestAuthService(t)
	ctx := context.Background()

	first, err := auth.Register(ctx, "dup@example.com", "password123")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "dup@example.com", "password456")
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	users, err := stores.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, first.ID, users[0].ID)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "user@example.com", "right-password")
	require.NoError(t, err)

	_, _, unknown := auth.Login(ctx, "nobody@example.com", "right-password")
	_, _, wrong := auth.Login(ctx, "user@example.com", "wrong-password")
	_, _, empty := auth.Login(ctx, "user@example.com", "")

	for _, err := range []error{unknown, wrong, empty} {
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	}
	assert.Equal(t, unknown.Error(), wrong.Error())
}

func TestAuthService_TokenExpiresAfterTTL(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	auth, _ := newTestAuthService(t, service.WithClock(func() time.Time { return clock() }))
	ctx := context.Background()

	u, err := auth.Register(ctx, "clock@example.com", "password123")
	require.NoError(t, err)
	tok, _, err := auth.Login(ctx, "clock@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, now.Add(service.DefaultTokenTTL), tok.Exp)

	clock = func() time.Time { return now.Add(time.Hour - time.Second) }
	sub, err := auth.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)

	clock = func() time.Time { return now.Add(time.Hour + time.Second) }
	_, err = auth.Verify(tok.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	assert.ErrorIs(t, err, utils.ErrTokenExpired)
}

func TestAuthService_VerifyErrors(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.Verify("")
	assert.ErrorIs(t, err, service.ErrMissingToken)

	_, err = auth.Verify("garbage")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	other, err := service.NewAuthService(nil, "a-completely-different-secret-value!", testCost, nil)
	require.NoError(t, err)
	forged, err := utils.NewAccessToken([]byte("a-completely-different-secret-value!"), "u1", time.Hour, time.Now())
	require.NoError(t, err)
	_, err = other.Verify(forged.Token)
	require.NoError(t, err)
	_, err = auth.Verify(forged.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthService_NeverLogsCredentials(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	stores := newTestStores(t)
	auth, err := service.NewAuthService(stores.Users, testSecret, testCost, log)
	require.NoError(t, err)
	ctx := context.Background()

	u, err := auth.Register(ctx, "log@example.com", "plaintext-secret")
	require.NoError(t, err)
	tok, _, err := auth.Login(ctx, "log@example.com", "plaintext-secret")
	require.NoError(t, err)
	_, _, _ = auth.Login(ctx, "log@example.com", "another-plaintext")

	out := buf.String()
	assert.Contains(t, out, "user registered")
	assert.NotContains(t, out, "plaintext-secret")
	assert.NotContains(t, out, "another-plaintext")
	assert.NotContains(t, out, u.PasswordHash)
	assert.NotContains(t, out, tok.Token)
}

func TestAuthService_RegisterInvalidatesLeaderboardCache(t *testing.T) {
	inv := &countingInvalidator{}
	auth, _ := newTestAuthService(t, service.WithCacheInvalidator(inv))
	ctx := context.Background()

	_, err := auth.Register(ctx, "new@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, inv.count())

	_, err = auth.Register(ctx, "new@example.com", "pw")
	require.ErrorIs(t, err, repository.ErrEmailExists)
	assert.Equal(t, 1, inv.count(), "duplicates change nothing")
}
