package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

type leaderboardEntry struct {
	Email string  `json:"email"`
	Score float64 `json:"score"`
}

// Leaderboard ranks every user by total footprint, lowest first. It needs no
// authentication.
func (h *ActivityHandler) Leaderboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	entries, err := h.Activities.Leaderboard(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]leaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, leaderboardEntry{Email: e.Email, Score: e.Score})
	}
	return c.JSON(http.StatusOK, out)
}
