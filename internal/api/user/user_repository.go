package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rayyy-dev/User-Management/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// PgxPool is the subset of pgxpool.Pool the repository needs. pgxmock's
// pool satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepo defines the contract for user data persistence.
type UserRepo interface {
	// Create inserts a new user and returns it fully populated. Uniqueness
	// of username and email is enforced atomically by the store's unique
	// constraints; violations surface as types.ErrConflictUsername or
	// types.ErrConflictEmail.
	Create(ctx context.Context, username, email, passwordHash string) (*types.User, error)

	// GetByID returns types.ErrNotFound if no such user exists.
	GetByID(ctx context.Context, id int64) (*types.User, error)

	// List returns all users ordered by id ascending.
	List(ctx context.Context) ([]types.User, error)

	// Delete removes a user permanently. A second delete of the same id
	// reports types.ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// FindByCredential looks a user up by exact username or by email
	// (emails compare lowercased). Used by login; includes the password
	// hash in the result.
	FindByCredential(ctx context.Context, credential string) (*types.User, error)

	// UpdateLastLogin sets last_login to now.
	UpdateLastLogin(ctx context.Context, id int64) error

	// UpdateProfile applies the non-nil fields of params.
	UpdateProfile(ctx context.Context, id int64, params types.UpdateProfileParams) error
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pool   PgxPool
}

func NewPostgresUserRepo(pool PgxPool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pool:   pool,
	}
}

// conflictError maps a Postgres unique violation to the matching sentinel
// by constraint name. When both fields collide Postgres reports the first
// violated constraint, which is users_username_key.
func conflictError(pgErr *pgconn.PgError) error {
	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return types.ErrConflictUsername
	case strings.Contains(pgErr.ConstraintName, "email"):
		return types.ErrConflictEmail
	default:
		return types.ErrConflict
	}
}

func (r *PostgresUserRepo) Create(ctx context.Context, username, email, passwordHash string) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Create"), slog.String("username", username))

	var u types.User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash)
         VALUES ($1, $2, $3)
         RETURNING id, username, email, password_hash, created_at, last_login`,
		username, email, passwordHash,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			l.WarnContext(ctx, "Duplicate registration rejected", slog.String("constraint", pgErr.ConstraintName))
			span.SetStatus(codes.Error, "unique violation")
			return nil, conflictError(pgErr)
		}
		l.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating user: %w", err)
	}

	l.InfoContext(ctx, "User created", slog.Int64("user_id", u.ID))
	return &u, nil
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id int64) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", id),
	))
	defer span.End()

	var u types.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at, last_login
         FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	return &u, nil
}

// List returns a snapshot of all users ordered by id ascending, so output
// is stable for identical datasets.
func (r *PostgresUserRepo) List(ctx context.Context) ([]types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "List", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, username, email, password_hash, created_at, last_login
         FROM users ORDER BY id ASC`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing users: %w", err)
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.LastLogin); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error iterating users: %w", err)
	}

	return users, nil
}

func (r *PostgresUserRepo) Delete(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", id),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Delete"), slog.Int64("user_id", id))

	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, types.ErrNotFound)
	}

	l.InfoContext(ctx, "User deleted")
	return nil
}

func (r *PostgresUserRepo) FindByCredential(ctx context.Context, credential string) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "FindByCredential", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	var u types.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at, last_login
         FROM users WHERE username = $1 OR email = $2`,
		credential, strings.ToLower(credential),
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("credential lookup: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error finding user: %w", err)
	}

	return &u, nil
}

func (r *PostgresUserRepo) UpdateLastLogin(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login = $1 WHERE id = $2`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("database error updating last_login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, types.ErrNotFound)
	}
	return nil
}

func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, id int64, params types.UpdateProfileParams) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdateProfile", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", id),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateProfile"), slog.Int64("user_id", id))

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Username != nil {
		setClauses = append(setClauses, fmt.Sprintf("username = $%d", argID))
		args = append(args, *params.Username)
		argID++
		span.SetAttributes(attribute.Bool("update.username", true))
	}
	if params.Email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argID))
		args = append(args, *params.Email)
		argID++
		span.SetAttributes(attribute.Bool("update.email", true))
	}
	if params.NewPassword != nil {
		// Service layer passes the already-hashed replacement here.
		setClauses = append(setClauses, fmt.Sprintf("password_hash = $%d", argID))
		args = append(args, *params.NewPassword)
		argID++
		span.SetAttributes(attribute.Bool("update.password", true))
	}

	if len(setClauses) == 0 {
		l.WarnContext(ctx, "UpdateProfile called with no fields to update")
		span.SetStatus(codes.Ok, "No update fields provided")
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), argID)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			l.WarnContext(ctx, "Profile update collided", slog.String("constraint", pgErr.ConstraintName))
			span.SetStatus(codes.Error, "unique violation")
			return conflictError(pgErr)
		}
		l.ErrorContext(ctx, "Failed to execute update profile query", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "User not found")
		return fmt.Errorf("user %d: %w", id, types.ErrNotFound)
	}

	l.InfoContext(ctx, "User profile updated")
	span.SetStatus(codes.Ok, "Profile updated")
	return nil
}
