package user

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Rayyy-dev/User-Management/internal/types"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 6
)

// ValidateNewUser checks a registration triple before any storage I/O.
// Fields are checked in order username, email, password and the first
// failure wins. Pure function, no side effects.
func ValidateNewUser(username, email, plaintext string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(plaintext)
}

// ValidateUsername enforces length 3-50 and the [A-Za-z0-9_] alphabet.
func ValidateUsername(username string) error {
	if n := utf8.RuneCountInString(username); n < usernameMinLen || n > usernameMaxLen {
		return types.ErrInvalidUsername
	}
	for _, c := range username {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return types.ErrInvalidUsername
		}
	}
	return nil
}

// ValidateEmail requires a parseable local@domain address whose domain
// contains at least one dot. Syntax only, no deliverability check.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return types.ErrInvalidEmail
	}
	at := strings.LastIndex(email, "@")
	if at < 0 || !strings.Contains(email[at+1:], ".") {
		return types.ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the minimum plaintext length in characters,
// not bytes, measured before hashing.
func ValidatePassword(plaintext string) error {
	if utf8.RuneCountInString(plaintext) < passwordMinLen {
		return types.ErrPasswordTooShort
	}
	return nil
}

// NormalizeEmail lowercases an email address. Email uniqueness is
// case-insensitive by normalization; usernames stay case-sensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(email)
}
