package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shibinnakam/cochin-backoffice/internal/auth"
	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/internal/identity"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
	"github.com/shibinnakam/cochin-backoffice/pkg/httputil"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFromContext returns the authenticated principal stored by
// RequireAuth, or nil outside an authenticated request.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey).(*domain.Principal)
	return p
}

// Guard authenticates requests and enforces role access. Verification only
// proves the token; the principal itself is always re-resolved from the
// stores so a deleted account fails closed.
type Guard struct {
	tokens   *auth.TokenManager
	resolver *identity.Resolver
	logger   *slog.Logger
}

// NewGuard creates the authentication guard.
func NewGuard(tokens *auth.TokenManager, resolver *identity.Resolver, logger *slog.Logger) *Guard {
	return &Guard{
		tokens:   tokens,
		resolver: resolver,
		logger:   logger,
	}
}

// RequireAuth verifies the bearer token, resolves the principal, and stores
// it in the request context. Requests without a valid, resolvable identity
// get 401.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httputil.WriteError(w, r, apperrors.Unauthorized("missing bearer token"), g.logger)
			return
		}

		claims, err := g.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired token"), g.logger)
			return
		}

		principal, err := g.resolver.Resolve(r.Context(), claims.PrincipalID)
		if err != nil {
			httputil.WriteError(w, r, apperrors.Unauthorized("unknown principal"), g.logger)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows only principals carrying one of the given roles.
// Mount inside RequireAuth.
func (g *Guard) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), g.logger)
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httputil.WriteError(w, r, apperrors.Forbidden("insufficient role"), g.logger)
		})
	}
}

// RequireSelfOrAdmin allows the principal whose id matches the named URL
// parameter, or any admin.
func (g *Guard) RequireSelfOrAdmin(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), g.logger)
				return
			}
			if p.ID != chi.URLParam(r, param) && !p.IsAdmin() {
				httputil.WriteError(w, r, apperrors.Forbidden("not permitted for this account"), g.logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS handles cross-origin requests for the configured browser origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowed[origin] || allowed["*"]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Correlation-ID")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
