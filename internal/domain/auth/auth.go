package auth

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for authentication flows.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already taken")
	ErrUserNotFound       = errors.New("user not found")
)

// User is a storefront account. PasswordHash and PasswordSalt hold the
// Argon2id digest; the clear password never leaves the login handler.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	PasswordSalt string
	Admin        bool
	CreatedAt    time.Time
}

// Repository defines user persistence.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// Service handles registration and login. Sessions are explicit JWT
// values issued here and verified by the HTTP layer; there is no
// ambient token storage anywhere in the service.
type Service struct {
	users  Repository
	tokens *TokenIssuer
}

// NewService creates an auth Service.
func NewService(users Repository, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates a new account with a freshly salted password hash.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, salt, err := hashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		PasswordSalt: salt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the password and issues an access token. Unknown user
// and wrong password collapse into the same ErrInvalidCredentials so
// the response does not leak which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, errors.Wrap(err, "lookup user")
	}

	ok, err := verifyPassword(password, u.PasswordSalt, u.PasswordHash)
	if err != nil {
		return "", nil, errors.Wrap(err, "verify password")
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", nil, errors.Wrap(err, "issue token")
	}
	return token, u, nil
}

// Verify validates an access token and returns its session claims.
func (s *Service) Verify(token string) (*Session, error) {
	return s.tokens.Verify(token)
}
