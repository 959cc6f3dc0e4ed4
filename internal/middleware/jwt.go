package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenVerifier resolves a raw bearer token to the id of the user it was
// issued to.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// BearerAuth returns an Echo middleware that requires an
// "Authorization: Bearer <token>" header. A missing or non-bearer header is
// answered with 401 "Unauthorized"; a token the verifier rejects with 401
// "Invalid token". On success the user id is stored in the context where
// UserID can read it.
func BearerAuth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
			}
			id, err := v.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}
			c.Set(userIDKey, id)
			return next(c)
		}
	}
}
