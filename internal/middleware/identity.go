package middleware

import "github.com/labstack/echo/v4"

const userIDKey = "user_id"

// UserID returns the id stored by BearerAuth, or "" when the request was
// not authenticated.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
