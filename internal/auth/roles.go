package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/servicedesk-io/servicedesk/pkg/util"
)

// RequireAdmin ensures the caller holds the Admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.IsAdmin() {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
