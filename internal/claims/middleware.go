package claims

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/config"
)

type contextKey string

const (
	// ContextKeyUserID carries the authenticated user id through the
	// request context
	ContextKeyUserID contextKey = "user_id"
	// ContextKeyRole carries the authenticated user role
	ContextKeyRole contextKey = "role"
)

// JWTClaims is the token claims shape issued by the platform's auth
// service. This service only validates; issuing tokens lives elsewhere.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates bearer tokens and injects the user identity
// into the request context. It is the boundary to the platform's auth
// layer; authorization decisions beyond token validity are made there.
type AuthMiddleware struct {
	secret []byte
	issuer string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(cfg *config.JWTConfig) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(cfg.SecretKey),
		issuer: cfg.Issuer,
	}
}

// Handler wraps the next handler with bearer-token validation
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, `{"error":"unauthorized","message":"Missing bearer token"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			http.Error(w, `{"error":"unauthorized","message":"Invalid token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validate parses and verifies one token string
func (m *AuthMiddleware) validate(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if m.issuer != "" {
		if issuer, err := claims.GetIssuer(); err != nil || issuer != m.issuer {
			return nil, fmt.Errorf("unexpected token issuer")
		}
	}

	return claims, nil
}

// UserIDFromContext extracts the authenticated user id, if present
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyUserID).(string); ok {
		return v
	}
	return ""
}
