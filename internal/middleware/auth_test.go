package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wastewatch-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, userID, email, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMissingHeader(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	req := httptest.NewRequest(http.MethodGet, "/api/citizen/reports", nil)
	rec := httptest.NewRecorder()

	Auth(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthenticated")
}

func TestAuthMalformedHeader(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()

	Auth(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthBadSignature(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1", "email": "x@y.z", "role": models.RoleCitizen,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	Auth(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthValidTokenPopulatesClaims(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	var got UserClaims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetUserFromContext(r)
		require.True(t, ok)
		got = claims
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "u1", "asha@example.com", models.RoleCitizen))
	rec := httptest.NewRecorder()

	Auth(inner).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "asha@example.com", got.Email)
	assert.Equal(t, models.RoleCitizen, got.Role)
}

func TestRequireRoleForbidden(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	handler := Auth(RequireRole(models.RoleAdmin)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "u1", "c@example.com", models.RoleCitizen))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")
}

func TestRequireRoleAllowsAnyListedRole(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	handler := Auth(RequireRole(models.RoleMunicipal, models.RoleAdmin)(okHandler()))

	for _, role := range []string{models.RoleMunicipal, models.RoleAdmin} {
		req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "u1", "m@example.com", role))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "role %s should be allowed", role)
	}

	// Citizen is not in the list
	req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "u1", "c@example.com", models.RoleCitizen))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleWithoutAuthContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	RequireRole(models.RoleAdmin)(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseTokenMissingClaims(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.Error(t, err)
}
