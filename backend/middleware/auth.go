package middleware

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Heng-789/GAMEPARTY-sub002/backend/utils"
)

// AdminRequired guards operator endpoints with a static bearer token. An
// empty configured token disables the admin surface entirely.
func AdminRequired(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			slog.Warn("Admin endpoint hit with no admin token configured",
				slog.String("path", c.Path()),
				slog.String("ip", utils.GetIPAddress(c)))
			return utils.SendForbidden(c, "Admin access is not configured")
		}

		header := c.Get("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return utils.SendUnauthorized(c, "Missing bearer token")
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			slog.Warn("Admin auth failed",
				slog.String("path", c.Path()),
				slog.String("ip", utils.GetIPAddress(c)))
			return utils.SendForbidden(c, "Access denied")
		}

		return c.Next()
	}
}
