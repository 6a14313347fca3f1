package claims

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/config"
)

func signToken(t *testing.T, secret, issuer string, expiresIn time.Duration) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		UserID: "user-1",
		Role:   "insurer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})

	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthTestHandler(secret, issuer string) (http.Handler, *string) {
	middleware := NewAuthMiddleware(&config.JWTConfig{SecretKey: secret, Issuer: issuer})

	var seenUserID string
	handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &seenUserID
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	handler, seenUserID := newAuthTestHandler("test-secret", "medisphere")

	req := httptest.NewRequest(http.MethodGet, "/claims/claim-1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "medisphere", time.Hour))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "user-1", *seenUserID)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	handler, _ := newAuthTestHandler("test-secret", "")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/claims/claim-1", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	handler, _ := newAuthTestHandler("test-secret", "")

	req := httptest.NewRequest(http.MethodGet, "/claims/claim-1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "", time.Hour))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	handler, _ := newAuthTestHandler("test-secret", "")

	req := httptest.NewRequest(http.MethodGet, "/claims/claim-1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "", -time.Hour))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthMiddleware_WrongIssuer(t *testing.T) {
	handler, _ := newAuthTestHandler("test-secret", "medisphere")

	req := httptest.NewRequest(http.MethodGet, "/claims/claim-1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "someone-else", time.Hour))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
