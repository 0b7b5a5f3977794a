package middleware

import (
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

// AdminChecker decides whether an organization role grants admin access.
type AdminChecker interface {
	IsAdmin(role string) bool
}

type AuthMiddleware struct {
	server *server.Server
	admins AdminChecker
}

func NewAuthMiddleware(s *server.Server, admins AdminChecker) *AuthMiddleware {
	return &AuthMiddleware{server: s, admins: admins}
}

// RequireAuth verifies the Clerk session token in the Authorization header
// and stores the subject and role in the echo context. Requests without a
// valid session get a 401.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return auth.verify(auth.withClaims(true, next))
}

// OptionalAuth is RequireAuth for routes that also serve guests, such as
// checkout. A missing token passes through; an invalid one is still a 401.
func (auth *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return auth.verify(auth.withClaims(false, next))
}

// RequireAdmin must run after RequireAuth.
func (auth *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role := GetUserRole(c)
		if !auth.admins.IsAdmin(role) {
			GetLogger(c).Warn().
				Str("function", "RequireAdmin").
				Str("user_role", role).
				Msg("admin access denied")
			return errs.NewForbiddenError("Admin access required", true)
		}
		return next(c)
	}
}

func (auth *AuthMiddleware) verify(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.writeUnauthorized)),
		),
	)(next)
}

// writeUnauthorized runs outside echo, so it writes the HTTPError shape
// itself.
func (auth *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(errs.NewUnauthorizedError("Unauthorized", false)); err != nil {
		auth.server.Logger.Error().
			Err(err).
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("failed to write JSON response")
		return
	}

	auth.server.Logger.Warn().
		Str("function", "RequireAuth").
		Str("path", r.URL.Path).
		Msg("invalid session token")
}

func (auth *AuthMiddleware) withClaims(required bool, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
		if !ok {
			if !required {
				return next(c)
			}
			GetLogger(c).Warn().
				Str("function", "RequireAuth").
				Str("request_id", GetRequestID(c)).
				Msg("could not get session claims from context")
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UserRoleKey, claims.ActiveOrganizationRole)
		c.Set(PermissionsKey, claims.Claims.ActiveOrganizationPermissions)

		return next(c)
	}
}
