package authmw

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_manager/internal/logging"
	"github.com/Skotchmaster/store_manager/internal/service"
	"github.com/Skotchmaster/store_manager/internal/tokens"
)

const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxPrincipal = "principal"

	ctxToken = "user"
)

type Authenticator interface {
	Authenticate(ctx context.Context, claims *tokens.AccessClaims) (*service.Principal, error)
}

// RequireAuth verifies the bearer token and resolves it to a principal
// through auth. Handlers read the result with PrincipalFrom.
func RequireAuth(secret []byte, auth Authenticator) echo.MiddlewareFunc {
	parse := echojwt.WithConfig(echojwt.Config{
		SigningKey:    secret,
		SigningMethod: "HS256",
		ContextKey:    ctxToken,
		TokenLookup:   "header:Authorization:Bearer ",
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(tokens.AccessClaims) },
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "auth")
			var missing *echojwt.TokenExtractionError
			if errors.As(err, &missing) {
				l.Warn("auth_error", "status", 401, "reason", "missing access token")
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			l.Warn("auth_error", "status", 401, "reason", "invalid or expired token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return parse(func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "auth")

			token, ok := c.Get(ctxToken).(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			claims, ok := token.Claims.(*tokens.AccessClaims)
			if !ok || claims.Subject == "" {
				l.Warn("auth_error", "status", 401, "reason", "token has no subject")
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}

			p, err := auth.Authenticate(ctx, claims)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					l.Warn("auth_error", "status", 401, "reason", service.Message(err))
					return echo.NewHTTPError(http.StatusUnauthorized, service.Message(err))
				}
				l.Error("auth_error", "status", 500, "reason", "cannot authenticate", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "cannot authenticate")
			}

			c.Set(CtxUserID, p.UserID)
			c.Set(CtxRole, p.Role)
			c.Set(CtxPrincipal, *p)
			return next(c)
		})
	}
}

// RequireRole lets the request through only when the stored role is one of
// roles. msg is returned with the 403.
func RequireRole(msg string, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			if !slices.Contains(roles, role) {
				logging.FromContext(c.Request().Context()).Warn("auth_error", "status", 403, "reason", msg, "role", role)
				return echo.NewHTTPError(http.StatusForbidden, msg)
			}
			return next(c)
		}
	}
}

func PrincipalFrom(c echo.Context) (service.Principal, bool) {
	p, ok := c.Get(CtxPrincipal).(service.Principal)
	return p, ok
}
