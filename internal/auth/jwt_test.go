package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

const testSecret = "test-secret-at-least-32-chars-long-for-security"

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		role     string
		wantRole string
	}{
		{"user", "user", "user"},
		{"admin", "admin", "admin"},
		{"empty role is user", "", "user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewJWTManager(testSecret, "docgen-test", 15*time.Minute)
			userID := uuid.New()

			token, err := m.GenerateAccessToken(userID, tt.role)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			gotID, role, err := m.ValidateToken(context.Background(), token)
			require.NoError(t, err)
			assert.Equal(t, userID, gotID)
			assert.Equal(t, tt.wantRole, role)
		})
	}
}

func TestJWTManager_GenerateRejectsUnknownRole(t *testing.T) {
	t.Parallel()
	m := NewJWTManager(testSecret, "docgen-test", time.Minute)

	_, err := m.GenerateAccessToken(uuid.New(), "root")
	assert.ErrorContains(t, err, `unknown role "root"`)
}

func TestJWTManager_Expired(t *testing.T) {
	t.Parallel()
	m := NewJWTManager(testSecret, "docgen-test", -time.Hour)

	token, err := m.GenerateAccessToken(uuid.New(), "user")
	require.NoError(t, err)

	_, _, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorContains(t, err, "token expired")
}

func TestJWTManager_WithinClockSkew(t *testing.T) {
	t.Parallel()
	m := NewJWTManager(testSecret, "docgen-test", -10*time.Second)

	token, err := m.GenerateAccessToken(uuid.New(), "user")
	require.NoError(t, err)

	_, _, err = m.ValidateAccessToken(token)
	assert.NoError(t, err)
}

func TestJWTManager_Rejections(t *testing.T) {
	t.Parallel()
	m := NewJWTManager(testSecret, "docgen-test", time.Minute)
	userID := uuid.New()

	otherSecret, err := NewJWTManager("different-secret-32-chars-long-for-security!!", "docgen-test", time.Minute).
		GenerateAccessToken(userID, "user")
	require.NoError(t, err)

	otherIssuer, err := NewJWTManager(testSecret, "wrong-issuer", time.Minute).GenerateAccessToken(userID, "user")
	require.NoError(t, err)

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "docgen-test",
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}
	}

	wrongAudience := valid()
	wrongAudience.Audience = jwt.ClaimStrings{"someone-else"}

	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	badSubject := valid()
	badSubject.Subject = "not-a-uuid"

	tests := []struct {
		name    string
		token   string
		wantMsg string
	}{
		{"empty", "", "token is empty"},
		{"malformed", "not.a.jwt", "parse token"},
		{"garbage", "invalid-token", "parse token"},
		{"other secret", otherSecret, "parse token"},
		{"other issuer", otherIssuer, `invalid issuer "wrong-issuer"`},
		{"other audience", sign(accessClaims{RegisteredClaims: wrongAudience}, jwt.SigningMethodHS256, []byte(testSecret)), "invalid audience"},
		{"no expiry", sign(accessClaims{RegisteredClaims: noExpiry}, jwt.SigningMethodHS256, []byte(testSecret)), "parse token"},
		{"bad subject", sign(accessClaims{RegisteredClaims: badSubject}, jwt.SigningMethodHS256, []byte(testSecret)), "invalid subject"},
		{"unknown role", sign(accessClaims{RegisteredClaims: valid(), Role: "root"}, jwt.SigningMethodHS256, []byte(testSecret)), `unknown role "root"`},
		{"HS512", sign(accessClaims{RegisteredClaims: valid()}, jwt.SigningMethodHS512, []byte(testSecret)), "parse token"},
		{"alg none", sign(accessClaims{RegisteredClaims: valid()}, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType), "parse token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, role, err := m.ValidateAccessToken(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.ErrorContains(t, err, tt.wantMsg)
			assert.Equal(t, uuid.Nil, id)
			assert.Empty(t, role)
		})
	}
}
