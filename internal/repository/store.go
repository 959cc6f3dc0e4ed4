package repository

import (
	"context"

	"github.com/iliyamo/carbon-footprint-tracker/internal/model"
)

// UserStore persists user credentials. Email uniqueness is enforced by the
// store at insert time.
type UserStore interface {
	// Create inserts a user and returns it with ID and CreatedAt set. It
	// fails with ErrEmailExists when the email is taken.
	Create(ctx context.Context, email, passwordHash string) (*model.User, error)
	// FindByEmail returns ErrNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByID returns ErrNotFound when no user has the id.
	FindByID(ctx context.Context, id string) (*model.User, error)
	// List returns every user ordered by registration time.
	List(ctx context.Context) ([]*model.User, error)
}

// ActivityStore persists logged activities.
type ActivityStore interface {
	// Create inserts a and sets a.ID.
	Create(ctx context.Context, a *model.Activity) error
	// ListByOwner returns the activities of one user, oldest first.
	ListByOwner(ctx context.Context, userID string) ([]*model.Activity, error)
}

// Stores bundles the stores of one backend with its lifecycle hooks.
type Stores struct {
	Backend    string
	Users      UserStore
	Activities ActivityStore

	ping  func(context.Context) error
	close func(context.Context) error
}

// NewStores assembles a Stores value. ping and closeFn may be nil.
func NewStores(backend string, users UserStore, activities ActivityStore, ping, closeFn func(context.Context) error) *Stores {
	return &Stores{
		Backend:    backend,
		Users:      users,
		Activities: activities,
		ping:       ping,
		close:      closeFn,
	}
}

// Ping checks that the backend is reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
