// Package service holds the application logic between HTTP handlers and the
// stores: authentication, activity logging and the derived views (score,
// suggestions, achievements, leaderboard).
package service

import "errors"

var (
	// ErrMissingField is returned when a required input is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidValue is returned when an activity value, or the carbon
	// estimated from it, is not a finite number.
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken is returned by Verify when no bearer token was sent.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken is returned by Verify for a malformed, forged or
	// expired token.
	ErrInvalidToken = errors.New("invalid token")
)
