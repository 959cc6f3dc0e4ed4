package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/carbon-footprint-tracker/internal/model"
	"github.com/iliyamo/carbon-footprint-tracker/internal/queue"
	"github.com/iliyamo/carbon-footprint-tracker/internal/repository"
	"github.com/iliyamo/carbon-footprint-tracker/internal/utils"
)

// DefaultTokenTTL is the lifetime of an access token.
const DefaultTokenTTL = time.Hour

// AuthService registers users, checks credentials and issues and verifies
// bearer tokens.
type AuthService struct {
	users      repository.UserStore
	events     Publisher
	cache      queue.Invalidator
	log        *slog.Logger
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	decoyHash  string
	now        func() time.Time
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithClock replaces time.Now as the source of token issue and
// verification times.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// WithTokenTTL overrides DefaultTokenTTL.
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithPublisher sets the sink for user.registered events.
func WithPublisher(p Publisher) AuthOption {
	return func(s *AuthService) {
		if p != nil {
			s.events = p
		}
	}
}

// WithCacheInvalidator clears the cached leaderboard after every
// registration.
func WithCacheInvalidator(inv queue.Invalidator) AuthOption {
	return func(s *AuthService) {
		if inv != nil {
			s.cache = inv
		}
	}
}

// NewAuthService builds an AuthService. The secret must be non-empty.
func NewAuthService(users repository.UserStore, secret string, bcryptCost int, log *slog.Logger, opts ...AuthOption) (*AuthService, error) {
	if secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	if log == nil {
		log = slog.Default()
	}
	s := &AuthService{
		users:      users,
		events:     NopPublisher{},
		cache:      nopInvalidator{},
		log:        log.With("component", "auth"),
		secret:     []byte(secret),
		ttl:        DefaultTokenTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	decoy, err := utils.DecoyHash(bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth: build decoy hash: %w", err)
	}
	s.decoyHash = decoy
	return s, nil
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = repository.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrMissingField)
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.log.InfoContext(ctx, "registration rejected", "reason", "duplicate_email")
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)
	invalidate(ctx, s.cache, s.log)

	_ = s.events.PublishUserRegistered(ctx, queue.UserRegisteredEvent{
		UserID:       u.ID,
		RegisteredAt: u.CreatedAt.Format(time.RFC3339),
	})
	return u, nil
}

// Login checks the credentials and returns a signed token for the user. An
// unknown email and a wrong password both yield ErrInvalidCredentials after
// one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (utils.AccessToken, *model.User, error) {
	email = repository.NormalizeEmail(email)
	if email == "" || password == "" {
		return utils.AccessToken{}, nil, ErrInvalidCredentials
	}

	u, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.VerifyPassword(s.decoyHash, password)
		s.log.InfoContext(ctx, "login failed", "reason", "invalid_credentials")
		return utils.AccessToken{}, nil, ErrInvalidCredentials
	case err != nil:
		return utils.AccessToken{}, nil, fmt.Errorf("find user: %w", err)
	}

	if !utils.VerifyPassword(u.PasswordHash, password) {
		s.log.InfoContext(ctx, "login failed", "reason", "invalid_credentials")
		return utils.AccessToken{}, nil, ErrInvalidCredentials
	}

	tok, err := utils.NewAccessToken(s.secret, u.ID, s.ttl, s.now())
	if err != nil {
		return utils.AccessToken{}, nil, fmt.Errorf("issue token: %w", err)
	}
	s.log.InfoContext(ctx, "login succeeded", "user_id", u.ID)
	return tok, u, nil
}

// Verify returns the user id carried by a bearer token.
func (s *AuthService) Verify(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingToken
	}
	userID, err := utils.ParseAccessToken(s.secret, raw, s.now())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return userID, nil
}

// User returns the account behind a verified user id.
func (s *AuthService) User(ctx context.Context, userID string) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}
