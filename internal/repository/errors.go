// Package repository defines the persistence contracts for users and
// activities together with their SQL (MySQL, SQLite) and MongoDB
// implementations. The sentinel errors below are shared by every backend
// so that services and handlers never inspect driver-specific errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a lookup matches no record. Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user is created with an email that is
// already registered. Handlers should translate this into an HTTP 400
// response.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is a unique-constraint violation from
// any supported backend.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
