package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Rayyy-dev/User-Management/config"
	"github.com/Rayyy-dev/User-Management/internal/api/password"
	"github.com/Rayyy-dev/User-Management/internal/api/user"
	"github.com/Rayyy-dev/User-Management/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService handles login, logout, and session resolution.
type AuthService interface {
	// Login verifies the credential (username or email) and password. On
	// success it records the login time, opens a session, and issues an
	// access token. Every failure mode returns types.ErrUnauthenticated
	// so responses never reveal whether the account exists.
	Login(ctx context.Context, credential, plainPassword string) (token uuid.UUID, accessToken string, err error)

	// Logout ends the session. Unknown tokens are not an error.
	Logout(ctx context.Context, token uuid.UUID) error

	// GetSession resolves a session token to its user info.
	GetSession(ctx context.Context, token uuid.UUID) (*types.SessionInfo, error)
}

type AuthServiceImpl struct {
	logger     *slog.Logger
	repo       user.UserRepo
	hasher     password.Hasher
	sessions   SessionStore
	jwtCfg     config.JWTConfig
	sessionTTL time.Duration
}

func NewAuthService(repo user.UserRepo, hasher password.Hasher, sessions SessionStore, jwtCfg config.JWTConfig, sessionTTL time.Duration, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:     logger,
		repo:       repo,
		hasher:     hasher,
		sessions:   sessions,
		jwtCfg:     jwtCfg,
		sessionTTL: sessionTTL,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, credential, plainPassword string) (uuid.UUID, string, error) {
	l := s.logger.With(slog.String("method", "Login"))

	u, err := s.repo.FindByCredential(ctx, credential)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Burn a hash verification anyway so unknown accounts take as
			// long as wrong passwords.
			s.hasher.Verify(plainPassword, password.DummyHash)
			l.WarnContext(ctx, "Login failed, unknown credential")
			return uuid.Nil, "", types.ErrUnauthenticated
		}
		l.ErrorContext(ctx, "Login lookup failed", slog.Any("error", err))
		return uuid.Nil, "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(plainPassword, u.PasswordHash) {
		l.WarnContext(ctx, "Login failed, password mismatch", slog.Int64("user_id", u.ID))
		return uuid.Nil, "", types.ErrUnauthenticated
	}

	if err := s.repo.UpdateLastLogin(ctx, u.ID); err != nil {
		// Login still succeeds; last_login is best effort.
		l.WarnContext(ctx, "Failed to record last login", slog.Any("error", err))
	}

	token, err := s.sessions.Create(ctx, u.ID, s.sessionTTL)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create session", slog.Any("error", err))
		return uuid.Nil, "", fmt.Errorf("login: %w", err)
	}

	accessToken, err := s.issueAccessToken(u)
	if err != nil {
		l.ErrorContext(ctx, "Failed to sign access token", slog.Any("error", err))
		return uuid.Nil, "", fmt.Errorf("login: %w", err)
	}

	l.InfoContext(ctx, "Login successful", slog.Int64("user_id", u.ID), slog.String("username", u.Username))
	return token, accessToken, nil
}

func (s *AuthServiceImpl) issueAccessToken(u *types.User) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.SecretKey))
}

func (s *AuthServiceImpl) Logout(ctx context.Context, token uuid.UUID) error {
	return s.sessions.Destroy(ctx, token)
}

func (s *AuthServiceImpl) GetSession(ctx context.Context, token uuid.UUID) (*types.SessionInfo, error) {
	return s.sessions.Resolve(ctx, token)
}
