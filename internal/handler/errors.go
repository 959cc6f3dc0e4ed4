package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-footprint-tracker/internal/repository"
	"github.com/iliyamo/carbon-footprint-tracker/internal/service"
)

// Client-facing messages. Internal detail is only ever logged.
const (
	msgRegistered    = "User registered successfully"
	msgMissingFields = "All fields are required"
	msgEmailExists   = "User already exists"
	msgInvalidValue  = "Value must be a finite number"
	msgInvalidCreds  = "Invalid credentials"
	msgUnauthorized  = "Unauthorized"
	msgInvalidToken  = "Invalid token"
	msgNotFound      = "Not Found"
	msgInvalidBody   = "Invalid request body"
	msgInternal      = "Internal server error"
	msgUnavailable   = "Service unavailable"
)

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}

// fail maps a service or store error to the smallest response that fits the
// route's contract. Unexpected errors are logged and answered with 500.
func fail(c echo.Context, log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrMissingField):
		return message(c, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, service.ErrInvalidValue):
		return message(c, http.StatusBadRequest, msgInvalidValue)
	case errors.Is(err, repository.ErrEmailExists):
		return message(c, http.StatusBadRequest, msgEmailExists)
	case errors.Is(err, service.ErrInvalidCredentials):
		return message(c, http.StatusUnauthorized, msgInvalidCreds)
	case errors.Is(err, service.ErrMissingToken):
		return message(c, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, service.ErrInvalidToken):
		return message(c, http.StatusUnauthorized, msgInvalidToken)
	case errors.Is(err, repository.ErrNotFound):
		return message(c, http.StatusNotFound, msgNotFound)
	}
	log.ErrorContext(c.Request().Context(), "request failed",
		"method", c.Request().Method, "path", c.Path(), "error", err)
	return message(c, http.StatusInternalServerError, msgInternal)
}

// HTTPErrorHandler replaces echo's default so that framework errors (unknown
// route, wrong method, panics) share the {"message": ...} shape.
func HTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		msg := msgInternal
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg = http.StatusText(status)
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			}
		}
		if status >= http.StatusInternalServerError {
			msg = msgInternal
			log.ErrorContext(c.Request().Context(), "unhandled error",
				"method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = message(c, status, msg)
		}
		if werr != nil {
			log.WarnContext(c.Request().Context(), "write error response", "error", werr)
		}
	}
}
