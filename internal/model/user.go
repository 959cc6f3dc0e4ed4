package model

import "time"

// User represents a registered account as stored in the `users` table (or
// the `users` collection when the document store backend is used). The
// struct carries no json tags; handlers define their own response types so
// that PasswordHash can never leak into a response body.
//
// Fields:
//  ID           – opaque identifier (UUID v4) assigned at creation.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password.
//  CreatedAt    – timestamp of registration.
type User struct {
	ID           string    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
}
