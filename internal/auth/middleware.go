package auth

import (
	"net/http"
	"strings"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/transport"
)

// Middleware authenticates requests and enforces the coarse role gate.
type Middleware struct {
	*transport.BaseHandler
	Service *Service
}

func NewMiddleware(svc *Service) *Middleware {
	return &Middleware{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     svc,
	}
}

// Authenticate validates the bearer token and stores the caller's identity
// in the request context. An account flagged must_change_password is blocked
// from everything except the set-password endpoint.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := m.ExtractTokenFromHeader(r)
		if tokenString == "" {
			m.WriteAppError(w, internal.ErrTokenMissing)
			return
		}

		claims, err := m.Service.ValidateToken(tokenString)
		if err != nil {
			m.WriteAppError(w, err)
			return
		}

		if claims.MustChangePassword && !isSetPasswordPath(r) {
			m.WriteAppError(w, internal.ErrMustChangePassword)
			return
		}

		principal := &internal.Principal{
			UserID:             claims.UserID,
			FullName:           claims.FullName,
			Email:              claims.Email,
			Role:               claims.Role,
			MustChangePassword: claims.MustChangePassword,
		}
		ctx := internal.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly is the coarse role gate: the token's role label must be admin or
// super admin, case-insensitively. It checks the label only, never the
// fine-grained permission set.
func (m *Middleware) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := internal.PrincipalFromContext(r.Context())
		if !ok {
			m.WriteAppError(w, internal.ErrTokenMissing)
			return
		}

		switch strings.ToLower(principal.Role) {
		case "admin", "super admin":
			next.ServeHTTP(w, r)
		default:
			m.WriteAppError(w, internal.ErrAdminsOnly)
		}
	})
}

func isSetPasswordPath(r *http.Request) bool {
	return strings.HasSuffix(r.URL.Path, "/auth/set_password")
}
