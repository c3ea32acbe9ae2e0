package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"botmarket/internal/schemas"
	"botmarket/internal/services"
)

// BotHandler handles HTTP requests for the bot catalogue, categories
// and reviews.
type BotHandler struct {
	botService      *services.BotService
	reviewService   *services.ReviewService
	categoryService *services.CategoryService
	validate        *validator.Validate
}

// NewBotHandler creates a new BotHandler.
func NewBotHandler(botService *services.BotService, reviewService *services.ReviewService, categoryService *services.CategoryService) *BotHandler {
	return &BotHandler{
		botService:      botService,
		reviewService:   reviewService,
		categoryService: categoryService,
		validate:        validator.New(),
	}
}

// RegisterPublicRoutes registers the catalogue reads. These must go on
// the router before any auth middleware is mounted so they stay open.
func (h *BotHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/bots", h.HandleListBots)
	router.Get("/bots/:id", h.HandleGetBot)
	router.Get("/bots/:id/reviews", h.HandleListReviews)
	router.Get("/categories", h.HandleListCategories)
}

// RegisterProtectedRoutes registers downloads and review writes. The
// router is expected to already carry the auth middleware.
func (h *BotHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Post("/bots/:id/download", h.HandleDownload)
	router.Post("/bots/:id/reviews", h.HandleCreateReview)
}

// HandleListBots lists bots with one of the four filter modes. The
// modes are mutually exclusive; free_only wins over category, category
// over search, search over the default active listing.
func (h *BotHandler) HandleListBots(c *fiber.Ctx) error {
	filter := services.BotFilter{
		Skip:     c.QueryInt("skip", 0),
		Limit:    c.QueryInt("limit", 100),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		FreeOnly: c.QueryBool("free_only", false),
	}

	bots, err := h.botService.ListBots(filter)
	if err != nil {
		log.Printf("Error listing bots: %v", err)
		return respondError(c, "Could not retrieve bots", err)
	}
	return c.JSON(bots)
}

// HandleGetBot retrieves a single bot by its ID.
func (h *BotHandler) HandleGetBot(c *fiber.Ctx) error {
	bot, err := h.botService.GetBot(c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve bot", err)
	}
	return c.JSON(bot)
}

// HandleDownload checks access, counts the download and returns the
// artifact location.
func (h *BotHandler) HandleDownload(c *fiber.Ctx) error {
	download, err := h.botService.RegisterDownload(currentUser(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not download bot", err)
	}
	return c.JSON(download)
}

// HandleListReviews lists a bot's reviews.
func (h *BotHandler) HandleListReviews(c *fiber.Ctx) error {
	reviews, err := h.reviewService.ListReviews(c.Params("id"), c.QueryInt("skip", 0), c.QueryInt("limit", 100))
	if err != nil {
		return respondError(c, "Could not retrieve reviews", err)
	}
	return c.JSON(reviews)
}

// HandleCreateReview writes the current user's review of a bot. A
// second review for the same bot is rejected.
func (h *BotHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req schemas.ReviewCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	review, err := h.reviewService.CreateReview(currentUser(c), c.Params("id"), &req)
	if err != nil {
		log.Printf("Error creating review: %v", err)
		return respondError(c, "Could not create review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// HandleListCategories lists the active categories.
func (h *BotHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.categoryService.ListActive(c.QueryInt("skip", 0), c.QueryInt("limit", 100))
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}
