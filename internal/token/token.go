// Package token implements the Token Issuer named in spec.md §6: issuing
// and decoding short-lived access tokens and longer-lived, rotating
// refresh tokens. Grounded on the teacher's
// internal/api/middleware/jwt.go JWTConfig/GenerateToken/ValidateToken
// pattern, reshaped from Gin middleware into a standalone issue/decode/
// refresh interface the Service layer can call directly.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"kv-shepherd.io/shepherd/internal/domain"
)

const defaultLeeway = 30 * time.Second

// Kind distinguishes access tokens from refresh tokens in the claim set
// so a refresh token presented where an access token is expected (or
// vice versa) is rejected rather than silently accepted.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrSigningKeyMissing = errors.New("token signing key is not configured")
	ErrWrongKind         = errors.New("token kind mismatch")
	ErrRevoked           = errors.New("token revoked")
)

// Claims is the JWT claim set issued for both access and refresh
// tokens; Kind tells Decode/Refresh which one it is looking at.
type Claims struct {
	Name string     `json:"name"`
	Role domain.Role `json:"role"`
	Kind Kind       `json:"kind"`
	jwt.RegisteredClaims
}

// RevocationStore tracks revoked token ids (jti) so a rotated-out
// refresh token, or an explicitly revoked access token, stops
// validating before its natural expiry.
type RevocationStore interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

// Config configures the Issuer. SigningKey must be non-empty.
type Config struct {
	SigningKey []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

// Issuer issues and validates the access/refresh token pair described
// by spec.md §6's Token Issuer interface.
type Issuer struct {
	cfg        Config
	revocation RevocationStore
}

// NewIssuer returns an Issuer backed by revocation.
func NewIssuer(cfg Config, revocation RevocationStore) *Issuer {
	if cfg.Leeway <= 0 {
		cfg.Leeway = defaultLeeway
	}
	return &Issuer{cfg: cfg, revocation: revocation}
}

// Issue mints a fresh (access, refresh) pair for name/role.
func (iss *Issuer) Issue(name string, role domain.Role) (access, refresh string, err error) {
	access, _, err = iss.mint(name, role, KindAccess, iss.cfg.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, _, err = iss.mint(name, role, KindRefresh, iss.cfg.RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (iss *Issuer) mint(name string, role domain.Role, kind Kind, ttl time.Duration) (string, string, error) {
	if len(iss.cfg.SigningKey) == 0 {
		return "", "", ErrSigningKeyMissing
	}
	now := time.Now()
	jti, err := uuid.NewV7()
	if err != nil {
		return "", "", fmt.Errorf("generate token id: %w", err)
	}
	claims := Claims{
		Name: name,
		Role: role,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    iss.cfg.Issuer,
			Subject:   name,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti.String(),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(iss.cfg.SigningKey)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, jti.String(), nil
}

func (iss *Issuer) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(iss.cfg.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(iss.cfg.Issuer),
	}
}

func (iss *Issuer) keyfunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	if len(iss.cfg.SigningKey) == 0 {
		return nil, ErrSigningKeyMissing
	}
	return iss.cfg.SigningKey, nil
}

func (iss *Issuer) parse(ctx context.Context, tokenString string, want Kind) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, iss.keyfunc, iss.parserOptions()...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Kind != want {
		return nil, ErrWrongKind
	}
	if iss.revocation != nil {
		revoked, err := iss.revocation.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return claims, nil
}

// Decode validates an access token and returns the identity it carries.
func (iss *Issuer) Decode(ctx context.Context, accessToken string) (name string, role domain.Role, err error) {
	claims, err := iss.parse(ctx, accessToken, KindAccess)
	if err != nil {
		return "", "", err
	}
	return claims.Name, claims.Role, nil
}

// Refresh validates refreshToken, revokes it (rotation: a refresh token
// is single-use) and mints a new (access, refresh) pair.
func (iss *Issuer) Refresh(ctx context.Context, refreshToken string) (access, refresh string, err error) {
	claims, err := iss.parse(ctx, refreshToken, KindRefresh)
	if err != nil {
		return "", "", err
	}
	if iss.revocation != nil {
		if err := iss.revocation.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return "", "", fmt.Errorf("revoke rotated refresh token: %w", err)
		}
	}
	return iss.Issue(claims.Name, claims.Role)
}
