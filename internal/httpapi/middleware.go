package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/auth"
	"github.com/kenkentupal/travel-registry-system/internal/policy"
)

// AuthMiddleware turns a bearer token into the request-scoped caller.
type AuthMiddleware struct {
	secret string
	logger *zap.Logger
}

func NewAuthMiddleware(secret string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: secret, logger: logger}
}

func (m *AuthMiddleware) callerFromRequest(r *http.Request) (policy.Caller, bool) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return policy.Caller{}, false
	}
	claims, err := auth.VerifyToken(m.secret, strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		m.logger.Debug("rejected bearer token", zap.Error(err))
		return policy.Caller{}, false
	}
	return policy.Caller{
		UserID:         claims.Subject,
		OrganizationID: claims.OrganizationID,
		Role:           claims.Role,
		Caps:           policy.Derive(claims.Role),
	}, true
}

// Require rejects requests without a valid token.
func (m *AuthMiddleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := m.callerFromRequest(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing or invalid token"})
			return
		}
		next(w, r.WithContext(WithCaller(r.Context(), caller)))
	}
}

// WithRequestTimeout puts a deadline on the request context so every store
// and cache call made on behalf of the request is bounded.
func WithRequestTimeout(h http.Handler, d time.Duration) http.Handler {
	if d <= 0 {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches a caller when a valid token is present and passes the
// request through either way. Used by the public endpoints, where an
// authenticated caller changes scan-recording behavior but never access.
func (m *AuthMiddleware) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if caller, ok := m.callerFromRequest(r); ok {
			r = r.WithContext(WithCaller(r.Context(), caller))
		}
		next(w, r)
	}
}
