package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the Locals key handlers read the caller identity from.
const UserIDKey = "userID"

// Middleware extracts the caller identity established by the upstream
// gateway. Session issuance and token verification happen there; this
// service only requires that an identity is present, and passes it
// explicitly into the pipeline rather than reading ambient state.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "User not authenticated.",
			})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated caller identity, or "" if none.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
