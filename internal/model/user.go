// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// WHY ID int64?
// The ID is assigned by SQLite's AUTOINCREMENT, which produces 64-bit
// integers. Using int64 matches the column type exactly, so there's no
// conversion or overflow to think about when scanning rows.
//
// WHY `json:"-"` ON PasswordHash?
// The struct tag "-" tells encoding/json to NEVER serialize this field.
// Even if a handler accidentally writes a whole *User to a response, the
// hash cannot leak. The same rule applies to logging: log the ID or email,
// never the hash.
//
// Email is stored case-sensitively and is immutable after creation. The
// UNIQUE constraint on the email column (not any code-level check) is what
// guarantees no two users share one.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the view of a User that is safe to return to clients.
// It mirrors the `user: {id, email}` object in signup/login responses.
//
// WHY A SEPARATE STRUCT AND NOT JUST User?
// User already hides the hash via `json:"-"`, but a dedicated view makes
// the API contract explicit: the response shape is exactly these two
// fields, and adding a column to User later can't silently widen it.
type PublicUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Public returns the client-safe view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}
