package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// editorMiddleware only lets the two editing profiles (direção, vice-direção)
// through; every other authenticated profile is read-only.
func editorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.CanEdit {
				return next(ctx)
			}
			return errHTTPForbidden
		}
	}
}
