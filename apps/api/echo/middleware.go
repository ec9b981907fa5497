package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// fullAccessMiddleware restricts an endpoint to the full-access roles
// (general secretary, priest), optionally further narrowed to specific roles.
func fullAccessMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.FullAccess && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// anyRoleMiddleware lets through any authenticated user holding at least one
// of the given roles. Full-access users always pass.
func anyRoleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.FullAccess || contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
