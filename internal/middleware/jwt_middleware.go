package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"botmarket/internal/repositories"
	"botmarket/internal/services"
)

// CurrentUserKey is the Locals key the resolved user is stored under.
const CurrentUserKey = "current_user"

// AuthRequired verifies the bearer token on every request and resolves
// its subject to a stored user. A missing, malformed, tampered or
// expired token, or a subject that no longer exists, all yield 401.
// A valid token for a disabled account yields 400, the one outcome
// deliberately distinguishable from bad credentials.
func AuthRequired(authService *services.AuthService, userRepo repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		subject, err := authService.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		// The subject must resolve to an existing user; anything else
		// is indistinguishable from a bad token.
		user, err := userRepo.GetByID(subject)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}
		if !user.IsActive {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Inactive account",
			})
		}

		c.Locals(CurrentUserKey, user)
		return c.Next()
	}
}
