// Package session owns the back-office session contract: staff log in with
// email and password, receive a bearer token, and every later request is
// authenticated against that token. There is exactly one way in (Login),
// one way out (Logout), and one way to read the caller (CurrentSession);
// nothing else in the codebase touches session state directly.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is a staff member able to log into the console.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
}

// UserStore resolves users and role permissions.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetRolePermissions(ctx context.Context, role string) ([]string, error)
}

// Denylist records revoked token IDs until their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Claims is the session token payload. Permissions travel inside the token
// the way the source stashed them client-side, but here they are signed and
// re-checked on every request.
type Claims struct {
	jwt.RegisteredClaims
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
	Permissions []string  `json:"permissions"`
}

// Credentials is the login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Manager issues, validates, and revokes session tokens.
type Manager struct {
	Store    UserStore
	Keys     *KeySet
	Denylist Denylist
	Issuer   string
	TokenTTL time.Duration
}

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Login checks the credentials and issues a signed session token carrying
// the user's display claims and role permissions.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := m.Store.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive || !VerifyPassword(user.PasswordHash, creds.Password) {
		return nil, ErrInvalidCredentials
	}

	perms, err := m.Store.GetRolePermissions(ctx, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	ttl := m.TokenTTL
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	expiresAt := time.Now().Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Name:        user.Name,
		Role:        user.Role,
		Permissions: perms,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = m.Keys.KeyID()

	signed, err := tok.SignedString(m.Keys.PrivateKey())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Session{
		Token:       signed,
		ExpiresAt:   expiresAt,
		User:        *user,
		Permissions: perms,
	}, nil
}

// Validate verifies a token's signature, expiry, issuer, and revocation
// status, returning its claims. This, not DisplayClaims, is the only path
// that grants access.
func (m *Manager) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	if m.Keys == nil || m.Keys.PublicKey() == nil {
		return nil, errors.New("missing keyset")
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return m.Keys.PublicKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	if m.Issuer != "" && claims.Issuer != m.Issuer {
		return nil, errors.New("invalid issuer")
	}

	if m.Denylist != nil && claims.ID != "" {
		revoked, err := m.Denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check revocation: %w", err)
		}
		if revoked {
			return nil, errors.New("token revoked")
		}
	}

	return claims, nil
}

// Logout revokes the given token until it would have expired anyway.
func (m *Manager) Logout(ctx context.Context, tokenString string) error {
	claims, err := m.Validate(ctx, tokenString)
	if err != nil {
		// Already invalid; nothing to revoke.
		return nil
	}

	if m.Denylist == nil || claims.ID == "" {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := m.Denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

type sessionKey struct{}

// WithSession stores validated claims on the context. The authentication
// middleware is the only caller.
func WithSession(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, sessionKey{}, claims)
}

// CurrentSession returns the validated claims of the caller, or false when
// the request was not authenticated.
func CurrentSession(ctx context.Context) (*Claims, bool) {
	v := ctx.Value(sessionKey{})
	claims, ok := v.(*Claims)
	return claims, ok
}
