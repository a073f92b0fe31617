package auth

import (
	"context"
	"net/http"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// ContextKeyRole is the context key for storing the caller's role
const ContextKeyRole contextKey = "role"

// Authenticator handles authentication for API requests. Keys are configured
// via environment variables: the admin key grants write access, the client
// key grants read-only access. A configured key may be either the plain key
// or a bcrypt hash of it (see VerifyConfiguredKey).
type Authenticator struct {
	adminKey  string
	clientKey string
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(adminKey, clientKey string) *Authenticator {
	return &Authenticator{adminKey: adminKey, clientKey: clientKey}
}

// AuthResult contains the result of an authentication attempt
type AuthResult struct {
	Authenticated bool
	Role          Role
	Error         string
}

// Authenticate authenticates a request using the Authorization header
func (a *Authenticator) Authenticate(ctx context.Context, authHeader string) AuthResult {
	token := ExtractBearerToken(authHeader)
	if token == "" {
		return AuthResult{
			Authenticated: false,
			Error:         "missing bearer token",
		}
	}

	if a.adminKey != "" && VerifyConfiguredKey(token, a.adminKey) {
		return AuthResult{
			Authenticated: true,
			Role:          RoleAdmin,
		}
	}

	if a.clientKey != "" && VerifyConfiguredKey(token, a.clientKey) {
		return AuthResult{
			Authenticated: true,
			Role:          RoleReadonly,
		}
	}

	return AuthResult{
		Authenticated: false,
		Error:         "invalid token",
	}
}

// RequireAuth is a middleware that requires authentication
func (a *Authenticator) RequireAuth(requiredRole Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			result := a.Authenticate(r.Context(), authHeader)

			if !result.Authenticated {
				http.Error(w, result.Error, http.StatusUnauthorized)
				return
			}

			// Check if user has required permission
			if !HasPermission(result.Role, requiredRole) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}

			// Add auth info to context
			ctx := context.WithValue(r.Context(), ContextKeyRole, result.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRoleFromContext extracts the role from the request context
func GetRoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(ContextKeyRole).(Role)
	return role, ok
}
