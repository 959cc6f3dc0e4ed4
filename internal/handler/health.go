package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health returns a health-check endpoint for load balancers and monitoring.
// It answers plain text "ok" when the store responds to a ping within two
// seconds and 503 otherwise.
func Health(p Pinger, log *slog.Logger) echo.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			log.WarnContext(ctx, "health check failed", "error", err)
			return c.String(http.StatusServiceUnavailable, msgUnavailable)
		}
		return c.String(http.StatusOK, "ok")
	}
}
