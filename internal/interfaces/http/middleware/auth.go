// Package middleware holds the net/http middleware chain of the API server:
// caller identity, request logging, CORS and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/auth/token"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
)

type contextKey int

const (
	claimsContextKey contextKey = iota
	ownerContextKey
)

// AnonymousOwner is the identity used when authentication is disabled and the
// caller does not name itself.
const AnonymousOwner = "anonymous"

// OwnerHeader names the caller when authentication is disabled.
const OwnerHeader = "X-User-ID"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, raw string) (*token.Claims, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// SkipPaths bypass authentication entirely.
	SkipPaths []string
}

// AuthMiddleware resolves the owner of every request.
type AuthMiddleware struct {
	validator TokenValidator
	config    AuthConfig
	logger    logging.Logger
}

// NewAuthMiddleware creates an AuthMiddleware.  A nil validator means
// authentication is disabled: the owner is taken from the X-User-ID header,
// falling back to AnonymousOwner.
func NewAuthMiddleware(validator TokenValidator, config AuthConfig, logger logging.Logger) *AuthMiddleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AuthMiddleware{validator: validator, config: config, logger: logger}
}

// Authenticate returns middleware that puts the owner id in the request
// context and rejects requests without a valid token.
func (m *AuthMiddleware) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.shouldSkip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if m.validator == nil {
				owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
				if owner == "" {
					owner = AnonymousOwner
				}
				next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
				return
			}

			raw := extractBearerToken(r)
			if raw == "" {
				writeUnauthorized(w, "authentication required")
				return
			}
			claims, err := m.validator.ValidateToken(r.Context(), raw)
			if err != nil {
				m.logger.Warn("token validation failed", logging.Err(err), logging.String("path", r.URL.Path))
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(WithOwner(ctx, claims.Subject)))
		})
	}
}

func (m *AuthMiddleware) shouldSkip(path string) bool {
	for _, skip := range m.config.SkipPaths {
		if path == skip || strings.HasPrefix(path, skip+"/") {
			return true
		}
	}
	return false
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// WithOwner stores the caller id in ctx.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerContextKey, owner)
}

// ContextGetOwner returns the caller id, or "" outside authenticated routes.
func ContextGetOwner(ctx context.Context) string {
	owner, _ := ctx.Value(ownerContextKey).(string)
	return owner
}

// ContextGetClaims returns the verified token claims, or nil when
// authentication is disabled.
func ContextGetClaims(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*token.Claims)
	return claims
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", `Bearer realm="labelscan"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"COMMON_003","message":"` + message + `"}}`))
}

//Personal.AI order the ending
