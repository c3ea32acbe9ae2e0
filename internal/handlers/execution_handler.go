package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"botmarket/internal/schemas"
	"botmarket/internal/services"
)

// ExecutionHandler handles HTTP requests for bot executions and their
// logs.
type ExecutionHandler struct {
	executionService *services.ExecutionService
	validate         *validator.Validate
}

// NewExecutionHandler creates a new ExecutionHandler.
func NewExecutionHandler(executionService *services.ExecutionService) *ExecutionHandler {
	return &ExecutionHandler{
		executionService: executionService,
		validate:         validator.New(),
	}
}

// RegisterRoutes registers the execution routes with the Fiber app. The
// router is expected to already carry the auth middleware.
func (h *ExecutionHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/bots/:id/executions", h.HandleQueueExecution)

	executionRoutes := router.Group("/executions")
	executionRoutes.Get("/", h.HandleListExecutions)
	executionRoutes.Get("/:id", h.HandleGetExecution)
	executionRoutes.Patch("/:id/status", h.HandleUpdateStatus)
	executionRoutes.Post("/:id/logs", h.HandleAppendLog)
}

// HandleQueueExecution queues a run of a bot for the current user.
func (h *ExecutionHandler) HandleQueueExecution(c *fiber.Ctx) error {
	var req schemas.ExecutionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	execution, err := h.executionService.QueueExecution(currentUser(c), c.Params("id"), &req)
	if err != nil {
		log.Printf("Error queueing execution: %v", err)
		return respondError(c, "Could not queue execution", err)
	}
	return c.Status(fiber.StatusCreated).JSON(execution)
}

// HandleListExecutions lists the current user's executions.
func (h *ExecutionHandler) HandleListExecutions(c *fiber.Ctx) error {
	executions, err := h.executionService.ListExecutions(currentUser(c), c.QueryInt("skip", 0), c.QueryInt("limit", 100))
	if err != nil {
		return respondError(c, "Could not retrieve executions", err)
	}
	return c.JSON(executions)
}

// HandleGetExecution retrieves one of the current user's executions
// with its logs.
func (h *ExecutionHandler) HandleGetExecution(c *fiber.Ctx) error {
	execution, err := h.executionService.GetExecution(currentUser(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve execution", err)
	}
	return c.JSON(execution)
}

// HandleUpdateStatus moves an execution along its status transitions.
func (h *ExecutionHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req schemas.ExecutionStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	execution, err := h.executionService.UpdateStatus(currentUser(c), c.Params("id"), &req)
	if err != nil {
		log.Printf("Error updating execution status: %v", err)
		return respondError(c, "Could not update execution status", err)
	}
	return c.JSON(execution)
}

// HandleAppendLog appends one log line to an execution.
func (h *ExecutionHandler) HandleAppendLog(c *fiber.Ctx) error {
	var req struct {
		LogLevel string `json:"log_level"`
		Message  string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	entry, err := h.executionService.AppendLog(currentUser(c), c.Params("id"), req.LogLevel, req.Message)
	if err != nil {
		return respondError(c, "Could not append log", err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}
