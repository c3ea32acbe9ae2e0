package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"

	"botmarket/internal/config"
	"botmarket/internal/database"
	"botmarket/internal/handlers"
	"botmarket/internal/middleware"
	"botmarket/internal/models"
	"botmarket/internal/repositories"
	"botmarket/internal/services"
	"botmarket/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ ---
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer mqClient.Close()

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	botRepo := repositories.NewGORMBotRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	executionRepo := repositories.NewGORMExecutionRepository(db)
	accessRepo := repositories.NewGORMAccessRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	botService := services.NewBotService(botRepo, accessRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	orderService := services.NewOrderService(db, botRepo, orderRepo, accessRepo, mqClient)
	reviewService := services.NewReviewService(db, botRepo, reviewRepo, accessRepo)
	executionService := services.NewExecutionService(db, botRepo, executionRepo, accessRepo, mqClient)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	botHandler := handlers.NewBotHandler(botService, reviewService, categoryService)
	orderHandler := handlers.NewOrderHandler(orderService)
	executionHandler := handlers.NewExecutionHandler(executionService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	botHandler.RegisterPublicRoutes(apiV1)

	// The empty-prefix group mounts the middleware on everything
	// registered on apiV1 from here on; public routes go above it.
	protected := apiV1.Group("", middleware.AuthRequired(authService, userRepo))
	botHandler.RegisterProtectedRoutes(protected)
	userHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	executionHandler.RegisterRoutes(protected)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if cfg.SeedData {
		seedCatalogue(categoryRepo, botRepo)
	}

	// --- Event consumer ---
	// The marketplace has no execution engine; the consumer just drains
	// and logs the events other systems would pick up.
	go func() {
		log.Println("Starting RabbitMQ consumer for marketplace events...")
		messageHandler := func(msg amqp.Delivery) error {
			log.Printf("Received %s event (Tag: %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
			return nil
		}
		if consumerErr := mqClient.ConsumeMarketplaceEvents(messageHandler); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}()

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// seedCatalogue populates an empty database with a few categories and
// bots for local development.
func seedCatalogue(categoryRepo repositories.CategoryRepository, botRepo repositories.BotRepository) {
	existing, err := categoryRepo.List(0, 1)
	if err != nil || len(existing) > 0 {
		return
	}

	categories := []models.Category{
		{Name: "Productivity", Description: "Automate everyday chores", IsActive: true},
		{Name: "File Management", Description: "Organize, rename and archive files", IsActive: true},
		{Name: "Web Scraping", Description: "Collect data from the web", IsActive: true},
	}
	for i := range categories {
		if err := categoryRepo.Create(&categories[i]); err != nil {
			log.Printf("Error seeding category %s: %v", categories[i].Name, err)
		}
	}

	bots := []models.Bot{
		{
			Name:        "Inbox Sorter",
			Description: "Sorts incoming mail into folders by sender and topic",
			Price:       9.99,
			IsActive:    true,
			Categories:  []models.Category{categories[0]},
		},
		{
			Name:        "Duplicate Finder",
			Description: "Finds and removes duplicate files",
			Price:       4.99,
			IsActive:    true,
			Categories:  []models.Category{categories[1]},
		},
		{
			Name:        "Price Watcher",
			Description: "Tracks product prices and alerts on drops",
			Price:       0,
			IsFree:      true,
			IsActive:    true,
			Categories:  []models.Category{categories[2]},
		},
	}
	for i := range bots {
		if err := botRepo.Create(&bots[i]); err != nil {
			log.Printf("Error seeding bot %s: %v", bots[i].Name, err)
		} else {
			log.Printf("Seeded bot: %s (ID: %s)", bots[i].Name, bots[i].ID)
		}
	}
}
