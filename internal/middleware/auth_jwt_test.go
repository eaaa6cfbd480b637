package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givehope/platform/internal/domain"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func donorClaims() Claims {
	return Claims{
		Name:  "Ahmad",
		Email: "ahmad@example.com",
		Role:  "donor",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-9",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func identityEcho(captured *domain.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestParseToken(t *testing.T) {
	token := signToken(t, testSecret, donorClaims())

	identity, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", identity.ID)
	assert.Equal(t, "Ahmad", identity.Name)
	assert.Equal(t, "ahmad@example.com", identity.Email)
	assert.Equal(t, domain.RoleDonor, identity.Role)
}

func TestParseToken_Rejections(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other-secret", donorClaims())
		_, err := ParseToken(testSecret, token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		claims := donorClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		token := signToken(t, testSecret, claims)
		_, err := ParseToken(testSecret, token)
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		claims := donorClaims()
		claims.Subject = ""
		token := signToken(t, testSecret, claims)
		_, err := ParseToken(testSecret, token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken(testSecret, "not.a.token")
		assert.Error(t, err)
	})
}

func TestRequireAuth(t *testing.T) {
	var captured domain.Identity
	handler := RequireAuth(testSecret)(identityEcho(&captured))

	t.Run("no header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		captured = domain.Identity{}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, donorClaims()))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "user-9", captured.ID)
		assert.Equal(t, domain.RoleDonor, captured.Role)
	})
}

func TestOptionalAuth(t *testing.T) {
	var captured domain.Identity
	handler := OptionalAuth(testSecret)(identityEcho(&captured))

	t.Run("guest passes through", func(t *testing.T) {
		captured = domain.Identity{ID: "stale"}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, captured.IsZero())
	})

	t.Run("present but invalid token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", donorClaims()))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		captured = domain.Identity{}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, donorClaims()))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "user-9", captured.ID)
	})
}
