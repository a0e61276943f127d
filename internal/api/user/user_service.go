package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rayyy-dev/User-Management/internal/api/password"
	"github.com/Rayyy-dev/User-Management/internal/types"
)

var _ UserService = (*UserServiceImpl)(nil)

// UserService orchestrates registration and user management on top of the
// repository and the password hasher.
type UserService interface {
	// Register validates the request, hashes the password, and persists a
	// new user. Validation failures return before any storage I/O.
	Register(ctx context.Context, req types.CreateUserRequest) (*types.User, error)

	Get(ctx context.Context, id int64) (*types.User, error)
	List(ctx context.Context) ([]types.User, error)
	Delete(ctx context.Context, id int64) error

	// UpdateProfile applies the non-nil fields after re-validating them. A
	// password change requires the caller's current password to verify.
	UpdateProfile(ctx context.Context, id int64, params types.UpdateProfileParams) error
}

type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
	hasher password.Hasher
}

func NewUserService(repo UserRepo, hasher password.Hasher, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
		hasher: hasher,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, req types.CreateUserRequest) (*types.User, error) {
	l := s.logger.With(slog.String("method", "Register"), slog.String("username", req.Username))

	if err := ValidateNewUser(req.Username, req.Email, req.Password); err != nil {
		l.WarnContext(ctx, "Registration rejected by validation", slog.Any("error", err))
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u, err := s.repo.Create(ctx, req.Username, NormalizeEmail(req.Email), hash)
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "User registered", slog.Int64("user_id", u.ID))
	return u, nil
}

func (s *UserServiceImpl) Get(ctx context.Context, id int64) (*types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserServiceImpl) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserServiceImpl) Delete(ctx context.Context, id int64) error {
	l := s.logger.With(slog.String("method", "Delete"), slog.Int64("user_id", id))

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	l.InfoContext(ctx, "User deleted")
	return nil
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, id int64, params types.UpdateProfileParams) error {
	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.Int64("user_id", id))

	if params.Username != nil {
		if err := ValidateUsername(*params.Username); err != nil {
			return err
		}
	}
	if params.Email != nil {
		if err := ValidateEmail(*params.Email); err != nil {
			return err
		}
		normalized := NormalizeEmail(*params.Email)
		params.Email = &normalized
	}

	if params.NewPassword != nil {
		if err := ValidatePassword(*params.NewPassword); err != nil {
			return err
		}
		if params.CurrentPassword == nil {
			return fmt.Errorf("current password required to change password: %w", types.ErrUnauthenticated)
		}

		u, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !s.hasher.Verify(*params.CurrentPassword, u.PasswordHash) {
			l.WarnContext(ctx, "Password change rejected, current password mismatch")
			return fmt.Errorf("current password incorrect: %w", types.ErrUnauthenticated)
		}

		hash, err := s.hasher.Hash(*params.NewPassword)
		if err != nil {
			l.ErrorContext(ctx, "Failed to hash replacement password", slog.Any("error", err))
			return fmt.Errorf("hashing password: %w", err)
		}
		params.NewPassword = &hash
	}

	if err := s.repo.UpdateProfile(ctx, id, params); err != nil {
		return err
	}

	l.InfoContext(ctx, "Profile updated")
	return nil
}
