package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/threadline/storefront/internal/domain/auth"
)

const (
	userColumns = `id, username, email, password_hash, password_salt, admin, created_at`

	insertUserSQL = `INSERT INTO users (username, email, password_hash, password_salt, admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	getUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	getUserByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

var _ auth.Repository = (*UserRepository)(nil)

// UserRepository implements auth.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a user and fills in its generated ID and creation
// time. A duplicate username maps to auth.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, u *auth.User) error {
	err := r.pool.QueryRow(ctx, insertUserSQL,
		u.Username, u.Email, u.PasswordHash, u.PasswordSalt, u.Admin,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.ErrUserExists
		}
		return fmt.Errorf("creating user %q: %w", u.Username, err)
	}
	return nil
}

// GetByUsername looks up a user by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.getUser(ctx, getUserByUsernameSQL, username)
}

// GetByID looks up a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	return r.getUser(ctx, getUserByIDSQL, id)
}

func (r *UserRepository) getUser(ctx context.Context, sql string, arg any) (*auth.User, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (auth.User, error) {
		var u auth.User
		err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.PasswordSalt, &u.Admin, &u.CreatedAt)
		return u, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}
