package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"botmarket/internal/apperrors"
	"botmarket/internal/middleware"
	"botmarket/internal/models"
)

// respondError maps a service error to its HTTP status and a JSON body.
func respondError(c *fiber.Ctx, message string, err error) error {
	return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// respondValidation reports per-field validation failures as a 400.
func respondValidation(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// currentUser returns the user resolved by the auth middleware.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(middleware.CurrentUserKey).(*models.User)
	return user
}
