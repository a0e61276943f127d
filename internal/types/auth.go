package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest represents the login request body. Credential accepts a
// username or an email address.
type LoginRequest struct {
	Credential string `json:"credential" example:"john_doe"`
	Password   string `json:"password" example:"securepass123"`
}

// LoginResponse represents the login response body. The session cookie is
// set alongside; the access token serves API clients that prefer Bearer auth.
type LoginResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJI..."`
	Message     string `json:"message" example:"Login successful"`
}

// SessionInfo describes a resolved session for the authenticated user.
type SessionInfo struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims are the custom claims carried in the JWT access token.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"usr,omitempty"`
	Email    string `json:"eml"`
	jwt.RegisteredClaims
}
