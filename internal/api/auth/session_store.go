package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rayyy-dev/User-Management/internal/types"
)

var _ SessionStore = (*PostgresSessionStore)(nil)

// pgPool is the subset of pgxpool.Pool the session store needs.
type pgPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionStore manages server-side login sessions keyed by opaque tokens.
type SessionStore interface {
	// Create opens a session for the user and returns its token.
	Create(ctx context.Context, userID int64, ttl time.Duration) (uuid.UUID, error)

	// Resolve returns the session's user info. Unknown and expired tokens
	// report types.ErrUnauthenticated.
	Resolve(ctx context.Context, token uuid.UUID) (*types.SessionInfo, error)

	// Destroy ends the session. Destroying an unknown token is a no-op.
	Destroy(ctx context.Context, token uuid.UUID) error
}

// PostgresSessionStore persists sessions in the sessions table with a
// read-through in-process cache in front of Resolve. The cache entry never
// outlives the session row.
type PostgresSessionStore struct {
	logger *slog.Logger
	pool   pgPool
	cache  *cache.Cache
}

func NewPostgresSessionStore(pool pgPool, logger *slog.Logger) *PostgresSessionStore {
	return &PostgresSessionStore{
		logger: logger,
		pool:   pool,
		cache:  cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *PostgresSessionStore) Create(ctx context.Context, userID int64, ttl time.Duration) (uuid.UUID, error) {
	ctx, span := otel.Tracer("SessionStore").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "sessions"),
		attribute.Int64("session.user_id", userID),
	))
	defer span.End()

	token := uuid.New()
	expiresAt := time.Now().Add(ttl)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, userID, expiresAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return uuid.Nil, fmt.Errorf("database error creating session: %w", err)
	}

	s.logger.InfoContext(ctx, "Session created", slog.Int64("user_id", userID))
	return token, nil
}

func (s *PostgresSessionStore) Resolve(ctx context.Context, token uuid.UUID) (*types.SessionInfo, error) {
	key := token.String()
	if cached, found := s.cache.Get(key); found {
		info := cached.(*types.SessionInfo)
		if time.Now().Before(info.ExpiresAt) {
			return info, nil
		}
		s.cache.Delete(key)
	}

	ctx, span := otel.Tracer("SessionStore").Start(ctx, "Resolve", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "sessions"),
	))
	defer span.End()

	var info types.SessionInfo
	err := s.pool.QueryRow(ctx,
		`SELECT u.id, u.username, u.email, s.expires_at
         FROM sessions s
         JOIN users u ON u.id = s.user_id
         WHERE s.token = $1`,
		token,
	).Scan(&info.UserID, &info.Username, &info.Email, &info.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("unknown session: %w", types.ErrUnauthenticated)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error resolving session: %w", err)
	}

	if !time.Now().Before(info.ExpiresAt) {
		// Expired rows are reaped lazily on lookup.
		if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
			s.logger.WarnContext(ctx, "Failed to reap expired session", slog.Any("error", err))
		}
		return nil, fmt.Errorf("session expired: %w", types.ErrUnauthenticated)
	}

	s.cache.Set(key, &info, time.Until(info.ExpiresAt))
	return &info, nil
}

func (s *PostgresSessionStore) Destroy(ctx context.Context, token uuid.UUID) error {
	ctx, span := otel.Tracer("SessionStore").Start(ctx, "Destroy", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "sessions"),
	))
	defer span.End()

	s.cache.Delete(token.String())

	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error destroying session: %w", err)
	}

	return nil
}
