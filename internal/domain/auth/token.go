package auth

import (
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for malformed, expired, or wrongly
// signed access tokens.
var ErrInvalidToken = errors.New("invalid token")

// Session is the verified identity carried by a request. It is always
// passed explicitly (request context), never read from ambient state.
type Session struct {
	UserID int64
	Admin  bool
}

// TokenIssuer mints and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer with the given signing secret
// and token lifetime.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

type sessionClaims struct {
	Admin bool `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token for the user.
func (t *TokenIssuer) Issue(u *User) (string, error) {
	now := t.now()
	claims := sessionClaims{
		Admin: u.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify parses and validates a token, returning its session.
func (t *TokenIssuer) Verify(raw string) (*Session, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Session{UserID: userID, Admin: claims.Admin}, nil
}
