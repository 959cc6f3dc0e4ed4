package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/carbon-footprint-tracker/internal/database"
	"github.com/iliyamo/carbon-footprint-tracker/internal/queue"
	"github.com/iliyamo/carbon-footprint-tracker/internal/repository"
)

const testSecret = "test-secret-key-for-unit-tests-0123456789"

// Use bcrypt's minimum cost for fast tests.
const testCost = 4

func newTestStores(t *testing.T) *repository.Stores {
	t.Helper()
	url := "sqlite://" + filepath.Join(t.TempDir(), "test.db")
	stores, err := database.Connect(context.Background(), url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close(context.Background()) })
	return stores
}

type recordingPublisher struct {
	mu         sync.Mutex
	registered []queue.UserRegisteredEvent
	logged     []queue.ActivityLoggedEvent
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, ev queue.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, ev)
	return nil
}

func (p *recordingPublisher) PublishActivityLogged(_ context.Context, ev queue.ActivityLoggedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logged = append(p.logged, ev)
	return nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
