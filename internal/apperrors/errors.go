package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors for the failure modes the API distinguishes.
// Callers wrap these with fmt.Errorf("...: %w", ...) to add context
// and handlers map them to HTTP statuses with StatusCode.
var (
	// ErrNotFound means the requested entity id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConstraintViolation means a unique or foreign-key constraint was breached.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrValidation means the input was malformed and never reached persistence.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials covers missing/invalid/expired tokens and wrong
	// credentials. It deliberately does not reveal whether the identifier existed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount means the credentials were valid but the account is
	// disabled. Distinct from ErrInvalidCredentials on purpose.
	ErrInactiveAccount = errors.New("inactive account")
	// ErrForbidden means the authenticated user may not access the resource.
	ErrForbidden = errors.New("forbidden")
)

// StatusCode maps an error to the HTTP status the API reports it with.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConstraintViolation), errors.Is(err, ErrValidation), errors.Is(err, ErrInactiveAccount):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}
