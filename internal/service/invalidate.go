package service

import (
	"context"
	"log/slog"

	"github.com/iliyamo/carbon-footprint-tracker/internal/queue"
)

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context) error { return nil }

// invalidate drops cached leaderboard responses after a write. A failure is
// logged and left to the cache TTL.
func invalidate(ctx context.Context, inv queue.Invalidator, log *slog.Logger) {
	if err := inv.Invalidate(context.WithoutCancel(ctx)); err != nil {
		log.WarnContext(ctx, "leaderboard cache invalidation failed", "error", err)
	}
}
