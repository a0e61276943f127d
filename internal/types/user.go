package types

import "time"

// User is the core user entity as stored. PasswordHash is never serialized.
type User struct {
	ID           int64      `json:"id" example:"1"`                       // Storage-assigned, monotonic.
	Username     string     `json:"username" example:"john_doe"`          // Unique, 3-50 chars, [A-Za-z0-9_].
	Email        string     `json:"email" example:"john@example.com"`     // Unique, stored lowercase.
	PasswordHash string     `json:"-"`                                    // Opaque argon2id hash (never exposed).
	CreatedAt    time.Time  `json:"created_at"`                           // Set once at creation.
	LastLogin    *time.Time `json:"last_login,omitempty"`                 // Updated on each successful login.
}

// CreateUserRequest is the registration request body.
type CreateUserRequest struct {
	Username string `json:"username" example:"john_doe"`
	Email    string `json:"email" example:"john@example.com"`
	Password string `json:"password" example:"securepass123"`
}

// CreateUserResponse is the registration response: a message plus the user.
type CreateUserResponse struct {
	Message string `json:"message" example:"User registered successfully"`
	User    *User  `json:"user"`
}

// ListUsersResponse wraps the ordered user list with its count.
type ListUsersResponse struct {
	Users []User `json:"users"`
	Count int    `json:"count" example:"2"`
}

// UpdateProfileParams defines the fields allowed for profile updates.
// Pointers distinguish "not provided" from zero values.
type UpdateProfileParams struct {
	Username        *string `json:"username,omitempty"`
	Email           *string `json:"email,omitempty"`
	CurrentPassword *string `json:"current_password,omitempty"` // Required when NewPassword is set.
	NewPassword     *string `json:"new_password,omitempty"`
}

// Response is a generic success/error envelope.
type Response struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"Operation successful"`
	Error   string `json:"error,omitempty" example:"Resource not found"`
}
