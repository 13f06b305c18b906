// Package auth validates the access tokens that identify document owners.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// Audience is the aud claim of every docgen access token.
const Audience = "docgen-api"

const clockSkew = 30 * time.Second

// JWTManager signs and validates HS256 access tokens. The subject is the
// caller's user id; the role claim decides whether templates may be managed.
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	parser    *jwt.Parser
	now       func() time.Time
}

// NewJWTManager creates a manager. secret must be at least 32 characters.
func NewJWTManager(secret string, issuer string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(Audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
		now: time.Now,
	}
}

type accessClaims struct {
	jwt.RegisteredClaims
	Role domain.UserRole `json:"role,omitempty"`
}

// GenerateAccessToken signs a token for userID with the given role
// ("user" or "admin").
func (m *JWTManager) GenerateAccessToken(userID uuid.UUID, role string) (string, error) {
	r, err := parseRole(role)
	if err != nil {
		return "", err
	}

	now := m.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: r,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken returns the user id and role carried by a valid token.
// Every failure wraps domain.ErrUnauthorized.
func (m *JWTManager) ValidateAccessToken(tokenString string) (uuid.UUID, string, error) {
	if tokenString == "" {
		return uuid.Nil, "", fmt.Errorf("token is empty: %w", domain.ErrUnauthorized)
	}

	var claims accessClaims
	_, err := m.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return uuid.Nil, "", fmt.Errorf("token expired: %w", domain.ErrUnauthorized)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return uuid.Nil, "", fmt.Errorf("invalid issuer %q: %w", claims.Issuer, domain.ErrUnauthorized)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return uuid.Nil, "", fmt.Errorf("invalid audience: %w", domain.ErrUnauthorized)
	case err != nil:
		return uuid.Nil, "", fmt.Errorf("parse token: %v: %w", err, domain.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid subject: %w", domain.ErrUnauthorized)
	}
	role, err := parseRole(string(claims.Role))
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}
	return userID, role.String(), nil
}

// ValidateToken validates an access token presented on a request.
func (m *JWTManager) ValidateToken(_ context.Context, token string) (uuid.UUID, string, error) {
	return m.ValidateAccessToken(token)
}

// parseRole accepts the known roles; an empty role means a plain user.
func parseRole(s string) (domain.UserRole, error) {
	switch r := domain.UserRole(s); r {
	case "", domain.UserRoleUser:
		return domain.UserRoleUser, nil
	case domain.UserRoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}
