package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

const testSecret = "test_secret_key_1234567890"

func TestJWTMaker_IssueAndVerify_ValidCases(t *testing.T) {
	tokenTTL := 7 * 24 * time.Hour
	maker := NewJWTMaker(testSecret, tokenTTL)

	tests := []struct {
		name   string
		userID int64
		email  string
		role   models.Role
	}{
		{name: "citizen", userID: 1, email: "awa@example.cm", role: models.RoleCitizen},
		{name: "collector", userID: 7, email: "hysacam@example.cm", role: models.RoleCollector},
		{name: "admin", userID: 42, email: "admin@ecolight.cm", role: models.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.Issue(tt.userID, tt.email, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.Verify(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.role, claims.Role)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_Verify_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker(testSecret, 15*time.Minute)

	validToken, err := maker.Issue(1, "user@example.com", models.RoleCitizen)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr []error
	}{
		{
			name:    "empty token",
			token:   "",
			wantErr: []error{ErrTokenMalformed},
		},
		{
			name:    "two segments",
			token:   "header.payload",
			wantErr: []error{ErrTokenMalformed},
		},
		{
			name:    "garbage segments",
			token:   "invalid.token.here",
			wantErr: []error{ErrTokenMalformed},
		},
		{
			name:    "expired token",
			token:   createExpiredToken(t),
			wantErr: []error{ErrTokenExpired},
		},
		{
			name:    "wrong secret key",
			token:   createTokenWithWrongSecret(t),
			wantErr: []error{ErrTokenInvalidSignature},
		},
		{
			name:    "tampered token",
			token:   validToken + "tampered",
			wantErr: []error{ErrTokenInvalidSignature, ErrTokenMalformed},
		},
		{
			name:    "unknown role",
			token:   signRaw(t, jwt.SigningMethodHS256, testSecret, Claims{UserID: 1, Role: "superuser", RegisteredClaims: future()}),
			wantErr: []error{ErrTokenMalformed},
		},
		{
			name:    "other algorithm",
			token:   signRaw(t, jwt.SigningMethodHS512, testSecret, Claims{UserID: 1, Role: models.RoleAdmin, RegisteredClaims: future()}),
			wantErr: []error{ErrTokenInvalidSignature},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.Verify(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)

			matched := false
			for _, want := range tt.wantErr {
				if errors.Is(err, want) {
					matched = true
				}
			}
			assert.True(t, matched, "unexpected error: %v", err)
		})
	}
}

func TestJWTMaker_DifferentSecretKeys(t *testing.T) {
	maker1 := NewJWTMaker("first_secret_key", 15*time.Minute)
	maker2 := NewJWTMaker("different_secret_key", 15*time.Minute)

	token, err := maker1.Issue(3, "user@example.com", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := maker2.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalidSignature)
	assert.Nil(t, claims)

	claims, err = maker1.Verify(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
}

func TestJWTMaker_SevenDayExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now := issuedAt
	clock := func() time.Time { return now }
	maker := NewJWTMaker(testSecret, 7*24*time.Hour, WithClock(clock))

	token, err := maker.Issue(5, "user@example.com", models.RoleCitizen)
	require.NoError(t, err)

	_, err = maker.Verify(token)
	require.NoError(t, err)

	now = issuedAt.Add(7*24*time.Hour - time.Minute)
	_, err = maker.Verify(token)
	require.NoError(t, err)

	now = issuedAt.Add(7*24*time.Hour + time.Minute)
	_, err = maker.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Contains(t, err.Error(), "expired")
}

func TestJWTMaker_TTL(t *testing.T) {
	assert.Equal(t, time.Hour, NewJWTMaker(testSecret, time.Hour).TTL())
	assert.Equal(t, DefaultTTL, NewJWTMaker(testSecret, 0).TTL())
}

func createExpiredToken(t *testing.T) string {
	maker := NewJWTMaker(testSecret, -time.Hour)
	token, err := maker.Issue(1, "user@example.com", models.RoleCitizen)
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewJWTMaker("wrong_secret_key", 15*time.Minute)
	token, err := wrongMaker.Issue(1, "user@example.com", models.RoleCitizen)
	require.NoError(t, err)
	return token
}

func signRaw(t *testing.T, method jwt.SigningMethod, secret string, claims Claims) string {
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func future() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}
