package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"botmarket/internal/schemas"
	"botmarket/internal/services"
)

// UserHandler handles HTTP requests for the authenticated user's profile.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes with the Fiber app. The
// router is expected to already carry the auth middleware.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/me", h.HandleGetMe)
	userRoutes.Put("/me", h.HandleUpdateMe)
	userRoutes.Delete("/me", h.HandleDeleteMe)
}

// HandleGetMe returns the current user.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// HandleUpdateMe applies a partial update to the current user. Omitted
// fields are left untouched.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var req schemas.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	user, err := h.userService.UpdateProfile(currentUser(c), &req)
	if err != nil {
		log.Printf("Error updating user profile: %v", err)
		return respondError(c, "Could not update profile", err)
	}
	return c.JSON(user)
}

// HandleDeleteMe removes the current user's account and everything
// they own.
func (h *UserHandler) HandleDeleteMe(c *fiber.Ctx) error {
	if err := h.userService.DeleteAccount(currentUser(c)); err != nil {
		log.Printf("Error deleting account: %v", err)
		return respondError(c, "Could not delete account", err)
	}
	return c.JSON(fiber.Map{"message": "Account deleted"})
}
