package types

import "time"

// User represents a registered forum author.
// It contains identity, profile, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address. It is unique across users.
	Email string `json:"email" db:"email"`

	// FirstName is the optional given name of the user.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the optional family name of the user.
	LastName string `json:"last_name" db:"last_name"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Viewer is the optional authenticated identity attached to a request.
// The zero value is an anonymous viewer.
type Viewer struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
}

// Authenticated reports whether the viewer carries a user identity.
func (v Viewer) Authenticated() bool {
	return v.UserID > 0
}

// Anonymous is the viewer of requests without a session.
var Anonymous = Viewer{}
