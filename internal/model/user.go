package model

import "time"

// Role values as reported by the platform API.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the platform identity for an account.
type User struct {
	// ID is the opaque server-assigned identifier.
	ID string `json:"id"`

	// Name is the display name shown in the UI.
	Name string `json:"name"`

	// Email is the account email, also used as the login name.
	Email string `json:"email"`

	// Role is either "user" or "admin".
	Role string `json:"role"`

	// CreatedAt is only populated on admin user listings.
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Session is the client-held record of the authenticated identity.
// A session is either fully populated or absent; the token is present
// exactly when the user is.
type Session struct {
	User  User
	Token string
}

// UserUpdate carries the editable profile fields. Nil fields are left
// unchanged by the server.
type UserUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}
