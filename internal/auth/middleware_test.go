package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runRequest(m *JWTMiddleware, token string) (*httptest.ResponseRecorder, *Claims) {
	var got *Claims
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, got
}

func TestAuthenticateDisabledWithoutSecret(t *testing.T) {
	m := NewJWTMiddleware("")
	assert.False(t, m.Enabled())

	rec, claims := runRequest(m, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, claims)
}

func TestAuthenticateValidToken(t *testing.T) {
	m := NewJWTMiddleware(testSecret)
	require.True(t, m.Enabled())

	token := signToken(t, &Claims{
		Sub:   "user-1",
		Email: "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	rec, claims := runRequest(m, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestAuthenticateMissingToken(t *testing.T) {
	m := NewJWTMiddleware(testSecret)

	rec, _ := runRequest(m, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	m := NewJWTMiddleware(testSecret)

	token := signToken(t, &Claims{Sub: "user-1"}, "other-secret")
	rec, _ := runRequest(m, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	m := NewJWTMiddleware(testSecret)

	token := signToken(t, &Claims{
		Sub: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)

	rec, _ := runRequest(m, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
