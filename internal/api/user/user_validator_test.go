package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rayyy-dev/User-Management/internal/types"
)

func TestValidateNewUser(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "john_doe", "john@example.com", "securepass123", nil},
		{"valid minimal", "abc", "x@y.co", "abcdef", nil},
		{"username too short", "ab", "x@y.com", "abcdef", types.ErrInvalidUsername},
		{"username too long", strings.Repeat("a", 51), "x@y.com", "abcdef", types.ErrInvalidUsername},
		{"username at max length", strings.Repeat("a", 50), "x@y.com", "abcdef", nil},
		{"username with dash", "john-doe", "x@y.com", "abcdef", types.ErrInvalidUsername},
		{"username with space", "john doe", "x@y.com", "abcdef", types.ErrInvalidUsername},
		{"username with unicode", "jöhn", "x@y.com", "abcdef", types.ErrInvalidUsername},
		{"empty username", "", "x@y.com", "abcdef", types.ErrInvalidUsername},
		{"email missing at", "john_doe", "notanemail", "abcdef", types.ErrInvalidEmail},
		{"email missing domain dot", "john_doe", "john@localhost", "abcdef", types.ErrInvalidEmail},
		{"email with display name", "john_doe", "John <john@example.com>", "abcdef", types.ErrInvalidEmail},
		{"empty email", "john_doe", "", "abcdef", types.ErrInvalidEmail},
		{"password too short", "john_doe", "x@y.com", "123", types.ErrPasswordTooShort},
		{"password at minimum", "john_doe", "x@y.com", "123456", nil},
		{"empty password", "john_doe", "x@y.com", "", types.ErrPasswordTooShort},
		// Length counts characters, not bytes: "€€" is 6 UTF-8 bytes but
		// only 2 characters.
		{"multibyte password too short", "john_doe", "x@y.com", "€€", types.ErrPasswordTooShort},
		{"multibyte password at minimum", "john_doe", "x@y.com", "€€€€€€", nil},
		// Username is checked first when several fields are invalid.
		{"all invalid reports username", "a", "bad", "x", types.ErrInvalidUsername},
		{"email before password", "john_doe", "bad", "x", types.ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewUser(tt.username, tt.email, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "john@example.com", NormalizeEmail("John@Example.COM"))
	assert.Equal(t, "x@y.com", NormalizeEmail("x@y.com"))
}
