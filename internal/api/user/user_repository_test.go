package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rayyy-dev/User-Management/internal/types"
)

const userColumnsSQL = `id, username, email, password_hash, created_at, last_login`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userRows(users ...types.User) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "last_login"})
	for _, u := range users {
		rows.AddRow(u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.LastLogin)
	}
	return rows
}

func TestPostgresUserRepo_Create(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		email        string
		setupMock    func(mock pgxmock.PgxPoolIface)
		wantSentinel error
		wantErrMsg   string
	}{
		{
			name:  "successful insert",
			email: "alice@example.com",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "alice@example.com", "$argon2id$hash").
					WillReturnRows(userRows(types.User{
						ID: 1, Username: "alice", Email: "alice@example.com",
						PasswordHash: "$argon2id$hash", CreatedAt: now,
					}))
			},
		},
		{
			name:  "duplicate username",
			email: "other@example.com",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "other@example.com", "$argon2id$hash").
					WillReturnError(&pgconn.PgError{
						Code:           pgerrcode.UniqueViolation,
						ConstraintName: "users_username_key",
					})
			},
			wantSentinel: types.ErrConflictUsername,
		},
		{
			name:  "duplicate email",
			email: "other@example.com",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "other@example.com", "$argon2id$hash").
					WillReturnError(&pgconn.PgError{
						Code:           pgerrcode.UniqueViolation,
						ConstraintName: "users_email_key",
					})
			},
			wantSentinel: types.ErrConflictEmail,
		},
		{
			name:  "database error",
			email: "alice@example.com",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "alice@example.com", "$argon2id$hash").
					WillReturnError(errors.New("connection refused"))
			},
			wantErrMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewPostgresUserRepo(mock, testLogger())
			got, err := repo.Create(context.Background(), "alice", tt.email, "$argon2id$hash")

			switch {
			case tt.wantSentinel != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantSentinel)
				assert.True(t, types.IsConflict(err))
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			default:
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, int64(1), got.ID)
				assert.Equal(t, "alice", got.Username)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestPostgresUserRepo_GetByID(t *testing.T) {
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT ` + userColumnsSQL).
			WithArgs(int64(7)).
			WillReturnRows(userRows(types.User{
				ID: 7, Username: "bob", Email: "bob@example.com",
				PasswordHash: "h", CreatedAt: now,
			}))

		repo := NewPostgresUserRepo(mock, testLogger())
		got, err := repo.GetByID(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
		assert.Equal(t, "bob", got.Username)
		assert.Nil(t, got.LastLogin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT ` + userColumnsSQL).
			WithArgs(int64(99)).
			WillReturnRows(userRows())

		repo := NewPostgresUserRepo(mock, testLogger())
		_, err = repo.GetByID(context.Background(), 99)

		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserRepo_List(t *testing.T) {
	now := time.Now()

	t.Run("ordered by id ascending", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT ` + userColumnsSQL + ` FROM users ORDER BY id ASC`).
			WillReturnRows(userRows(
				types.User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "h1", CreatedAt: now},
				types.User{ID: 2, Username: "bob", Email: "bob@example.com", PasswordHash: "h2", CreatedAt: now},
			))

		repo := NewPostgresUserRepo(mock, testLogger())
		got, err := repo.List(context.Background())

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "alice", got[0].Username)
		assert.Equal(t, "bob", got[1].Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table yields empty slice", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT ` + userColumnsSQL).
			WillReturnRows(userRows())

		repo := NewPostgresUserRepo(mock, testLogger())
		got, err := repo.List(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row iteration error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := userRows(types.User{ID: 1, Username: "alice", Email: "a@example.com", PasswordHash: "h", CreatedAt: now}).
			RowError(0, errors.New("row iteration error"))
		mock.ExpectQuery(`SELECT ` + userColumnsSQL).
			WillReturnRows(rows)

		repo := NewPostgresUserRepo(mock, testLogger())
		_, err = repo.List(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "row iteration error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserRepo_Delete(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful delete",
			id:   3,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
					WithArgs(int64(3)).
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
		},
		{
			name: "missing user reports not found",
			id:   99,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
					WithArgs(int64(99)).
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			wantErr: types.ErrNotFound,
		},
		{
			name: "database error",
			id:   3,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
					WithArgs(int64(3)).
					WillReturnError(errors.New("connection lost"))
			},
			wantErr: errors.New("connection lost"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewPostgresUserRepo(mock, testLogger())
			err = repo.Delete(context.Background(), tt.id)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, types.ErrNotFound) {
					assert.ErrorIs(t, err, types.ErrNotFound)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresUserRepo_FindByCredential(t *testing.T) {
	now := time.Now()

	t.Run("matches username or lowercased email", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT ` + userColumnsSQL + ` FROM users WHERE username = \$1 OR email = \$2`).
			WithArgs("Alice@Example.COM", "alice@example.com").
			WillReturnRows(userRows(types.User{
				ID: 1, Username: "alice", Email: "alice@example.com",
				PasswordHash: "$argon2id$hash", CreatedAt: now,
			}))

		repo := NewPostgresUserRepo(mock, testLogger())
		got, err := repo.FindByCredential(context.Background(), "Alice@Example.COM")

		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, "$argon2id$hash", got.PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown credential reports not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT ` + userColumnsSQL).
			WithArgs("ghost", "ghost").
			WillReturnRows(userRows())

		repo := NewPostgresUserRepo(mock, testLogger())
		_, err = repo.FindByCredential(context.Background(), "ghost")

		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserRepo_UpdateLastLogin(t *testing.T) {
	t.Run("updates timestamp", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE users SET last_login = \$1 WHERE id = \$2`).
			WithArgs(pgxmock.AnyArg(), int64(5)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewPostgresUserRepo(mock, testLogger())
		require.NoError(t, repo.UpdateLastLogin(context.Background(), 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user reports not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE users SET last_login = \$1 WHERE id = \$2`).
			WithArgs(pgxmock.AnyArg(), int64(99)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewPostgresUserRepo(mock, testLogger())
		assert.ErrorIs(t, repo.UpdateLastLogin(context.Background(), 99), types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserRepo_UpdateProfile(t *testing.T) {
	username := "newname"
	email := "new@example.com"
	hash := "$argon2id$newhash"

	t.Run("updates only provided fields", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE users SET username = \$1 WHERE id = \$2`).
			WithArgs(username, int64(4)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewPostgresUserRepo(mock, testLogger())
		err = repo.UpdateProfile(context.Background(), 4, types.UpdateProfileParams{Username: &username})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("updates all fields", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE users SET username = \$1, email = \$2, password_hash = \$3 WHERE id = \$4`).
			WithArgs(username, email, hash, int64(4)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewPostgresUserRepo(mock, testLogger())
		err = repo.UpdateProfile(context.Background(), 4, types.UpdateProfileParams{
			Username:    &username,
			Email:       &email,
			NewPassword: &hash,
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no fields is a no-op", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPostgresUserRepo(mock, testLogger())
		require.NoError(t, repo.UpdateProfile(context.Background(), 4, types.UpdateProfileParams{}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("username collision maps to conflict", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE users SET username = \$1 WHERE id = \$2`).
			WithArgs(username, int64(4)).
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "users_username_key",
			})

		repo := NewPostgresUserRepo(mock, testLogger())
		err = repo.UpdateProfile(context.Background(), 4, types.UpdateProfileParams{Username: &username})

		assert.ErrorIs(t, err, types.ErrConflictUsername)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user reports not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE users SET username = \$1 WHERE id = \$2`).
			WithArgs(username, int64(99)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewPostgresUserRepo(mock, testLogger())
		err = repo.UpdateProfile(context.Background(), 99, types.UpdateProfileParams{Username: &username})

		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
