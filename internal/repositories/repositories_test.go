package repositories_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"botmarket/internal/apperrors"
	"botmarket/internal/database"
	"botmarket/internal/models"
	"botmarket/internal/repositories"
)

// setupDB opens a fresh SQLite database with the full schema. A file
// under t.TempDir keeps every pooled connection on the same database,
// which ":memory:" does not guarantee.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	repo := repositories.NewGORMUserRepository(db)
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
		IsActive:     true,
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func createBot(t *testing.T, db *gorm.DB, bot *models.Bot) *models.Bot {
	t.Helper()
	repo := repositories.NewGORMBotRepository(db)
	if err := repo.Create(bot); err != nil {
		t.Fatalf("Failed to create bot %s: %v", bot.Name, err)
	}
	return bot
}

func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	os.Exit(m.Run())
}

func TestUserRepository_LookupsAndUniqueness(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMUserRepository(db)

	user := createUser(t, db, "alice")
	assert.NotEmpty(t, user.ID)

	// Lookups by ID, username and email
	byID, err := repo.GetByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.Username, byID.Username)

	byName, err := repo.GetByUsername("alice")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByEmail("alice@example.com")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	// Missing records surface as ErrNotFound
	_, err = repo.GetByUsername("nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.GetByID("missing-id")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Duplicate email hits the unique index
	dupEmail := &models.User{Email: "alice@example.com", Username: "alice2", PasswordHash: "hash"}
	err = repo.Create(dupEmail)
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)

	// Duplicate username likewise
	dupName := &models.User{Email: "other@example.com", Username: "alice", PasswordHash: "hash"}
	err = repo.Create(dupName)
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
}

func TestUserRepository_PartialUpdate(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMUserRepository(db)
	user := createUser(t, db, "bob")

	// Only named fields change; unknown names are dropped silently
	updated, err := repo.Update(user, map[string]any{
		"first_name":    "Bob",
		"no_such_field": "ignored",
	})
	assert.NoError(t, err)
	assert.NotNil(t, updated)

	fresh, err := repo.GetByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Bob", fresh.FirstName)
	assert.Equal(t, "bob", fresh.Username)
	assert.Equal(t, "bob@example.com", fresh.Email)

	// A payload with no known fields is a no-op, not an error
	_, err = repo.Update(user, map[string]any{"bogus": 1})
	assert.NoError(t, err)
}

func TestUserRepository_RemoveDeletesOwnedRows(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	executionRepo := repositories.NewGORMExecutionRepository(db)
	accessRepo := repositories.NewGORMAccessRepository(db)

	user := createUser(t, db, "carol")
	bot := createBot(t, db, &models.Bot{Name: "Test Bot", Price: 5.00, IsActive: true})

	order := &models.Order{
		UserID:      &user.ID,
		TotalAmount: 5.00,
		Items:       []models.OrderItem{{BotID: &bot.ID, Quantity: 1, PriceAtPurchase: 5.00}},
	}
	assert.NoError(t, orderRepo.Create(order))

	review := &models.BotReview{UserID: &user.ID, BotID: &bot.ID, Rating: 4}
	assert.NoError(t, reviewRepo.Create(review))

	execution := &models.BotExecution{UserID: &user.ID, BotID: &bot.ID, ExecutionStatus: models.ExecutionStatusQueued}
	assert.NoError(t, executionRepo.Create(execution))
	assert.NoError(t, executionRepo.AppendLog(&models.ExecutionLog{
		ExecutionID: execution.ID, Message: "queued", Timestamp: time.Now(),
	}))

	assert.NoError(t, accessRepo.Grant(&models.UserBotAccess{
		UserID: user.ID, BotID: bot.ID, AccessType: models.AccessTypePurchased, IsActive: true,
	}))

	removed, err := userRepo.Remove(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, removed.ID)

	// Everything the user owned is gone, including nested rows
	var count int64
	db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.BotReview{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.BotExecution{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.ExecutionLog{}).Where("execution_id = ?", execution.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.UserBotAccess{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)

	// The bot itself is untouched
	botRepo := repositories.NewGORMBotRepository(db)
	_, err = botRepo.Get(bot.ID)
	assert.NoError(t, err)
}

func TestBotRepository_FilterModes(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMBotRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)

	category := &models.Category{Name: "Scrapers", IsActive: true}
	assert.NoError(t, categoryRepo.Create(category))

	paidScraper := createBot(t, db, &models.Bot{
		Name:        "Page Scraper",
		Description: "Collects product listings",
		Price:       12.50,
		IsActive:    true,
		Categories:  []models.Category{*category},
	})
	freeBot := createBot(t, db, &models.Bot{
		Name: "Free Helper", Description: "Does small chores", IsFree: true, IsActive: true,
	})
	createBot(t, db, &models.Bot{
		Name: "Retired Scraper", Description: "No longer offered", Price: 3.00, IsActive: false,
	})

	// Default listing excludes inactive bots
	active, err := repo.ListActive(0, 100)
	assert.NoError(t, err)
	assert.Len(t, active, 2)

	// free_only is exact: paid actives are excluded
	free, err := repo.ListFree(0, 100)
	assert.NoError(t, err)
	assert.Len(t, free, 1)
	assert.Equal(t, freeBot.ID, free[0].ID)

	// Case-insensitive search over name and description, active only.
	// "scraper" matches the inactive bot's name too, which must not leak.
	found, err := repo.Search("SCRAPER", 0, 100)
	assert.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, paidScraper.ID, found[0].ID)

	found, err = repo.Search("chores", 0, 100)
	assert.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, freeBot.ID, found[0].ID)

	// Category filter walks the junction table
	inCategory, err := repo.ListByCategory(category.ID, 0, 100)
	assert.NoError(t, err)
	assert.Len(t, inCategory, 1)
	assert.Equal(t, paidScraper.ID, inCategory[0].ID)

	inEmpty, err := repo.ListByCategory("no-such-category", 0, 100)
	assert.NoError(t, err)
	assert.Empty(t, inEmpty)
}

func TestBotRepository_IncrementDownloads(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMBotRepository(db)
	bot := createBot(t, db, &models.Bot{Name: "Counter Bot", IsFree: true, IsActive: true})

	assert.NoError(t, repo.IncrementDownloads(bot.ID))
	assert.NoError(t, repo.IncrementDownloads(bot.ID))

	fresh, err := repo.Get(bot.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, fresh.DownloadCount)

	err = repo.IncrementDownloads("missing-bot")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderRepository_PriceSnapshotSurvivesPriceChange(t *testing.T) {
	db := setupDB(t)
	orderRepo := repositories.NewGORMOrderRepository(db)
	botRepo := repositories.NewGORMBotRepository(db)

	user := createUser(t, db, "dave")
	bot := createBot(t, db, &models.Bot{Name: "Priced Bot", Price: 19.99, IsActive: true})

	order := &models.Order{
		UserID:        &user.ID,
		TotalAmount:   39.98,
		PaymentStatus: models.PaymentStatusPending,
		OrderStatus:   models.OrderStatusProcessing,
		Items: []models.OrderItem{
			{BotID: &bot.ID, Quantity: 2, PriceAtPurchase: bot.Price},
		},
	}
	assert.NoError(t, orderRepo.Create(order))

	// Reprice the bot after the sale
	_, err := botRepo.Update(bot, map[string]any{"price": 49.99})
	assert.NoError(t, err)

	fetched, err := orderRepo.GetWithItems(order.ID)
	assert.NoError(t, err)
	assert.Len(t, fetched.Items, 1)
	assert.Equal(t, 19.99, fetched.Items[0].PriceAtPurchase)
	assert.Equal(t, 39.98, fetched.TotalAmount)

	// ListByUser returns the order with items preloaded
	orders, err := orderRepo.ListByUser(user.ID, 0, 100)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 1)
}

func TestReviewRepository_OnePerUserAndAggregate(t *testing.T) {
	db := setupDB(t)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	botRepo := repositories.NewGORMBotRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	bot := createBot(t, db, &models.Bot{Name: "Rated Bot", IsFree: true, IsActive: true})

	assert.NoError(t, reviewRepo.Create(&models.BotReview{UserID: &alice.ID, BotID: &bot.ID, Rating: 5}))
	assert.NoError(t, reviewRepo.Create(&models.BotReview{UserID: &bob.ID, BotID: &bot.ID, Rating: 2}))

	// One review per (user, bot) pair
	err := reviewRepo.Create(&models.BotReview{UserID: &alice.ID, BotID: &bot.ID, Rating: 1})
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)

	assert.NoError(t, reviewRepo.RecomputeBotRating(bot.ID))

	fresh, err := botRepo.Get(bot.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3.5, fresh.RatingAverage)
	assert.Equal(t, 2, fresh.RatingCount)

	reviews, err := reviewRepo.ListByBot(bot.ID, 0, 100)
	assert.NoError(t, err)
	assert.Len(t, reviews, 2)

	mine, err := reviewRepo.GetByUserAndBot(alice.ID, bot.ID)
	assert.NoError(t, err)
	assert.Equal(t, 5, mine.Rating)
}

func TestReviewRepository_SurvivesBotRemoval(t *testing.T) {
	db := setupDB(t)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	botRepo := repositories.NewGORMBotRepository(db)

	user := createUser(t, db, "erin")
	bot := createBot(t, db, &models.Bot{Name: "Doomed Bot", IsFree: true, IsActive: true})
	review := &models.BotReview{UserID: &user.ID, BotID: &bot.ID, Rating: 3}
	assert.NoError(t, reviewRepo.Create(review))

	_, err := botRepo.Remove(bot.ID)
	assert.NoError(t, err)

	// The review stays behind as a historical record with a nulled ref
	kept, err := reviewRepo.Get(review.ID)
	assert.NoError(t, err)
	assert.Nil(t, kept.BotID)
	assert.Equal(t, 3, kept.Rating)
}

func TestAccessRepository_GrantUpsertsAndExpiry(t *testing.T) {
	db := setupDB(t)
	accessRepo := repositories.NewGORMAccessRepository(db)

	user := createUser(t, db, "frank")
	bot := createBot(t, db, &models.Bot{Name: "Licensed Bot", Price: 30, IsActive: true})

	soon := time.Now().Add(time.Hour)
	assert.NoError(t, accessRepo.Grant(&models.UserBotAccess{
		UserID: user.ID, BotID: bot.ID,
		AccessType: models.AccessTypeTrial, ExpiresAt: &soon, IsActive: true,
	}))

	// Re-granting refreshes the existing row instead of duplicating it
	assert.NoError(t, accessRepo.Grant(&models.UserBotAccess{
		UserID: user.ID, BotID: bot.ID,
		AccessType: models.AccessTypePurchased, IsActive: true,
	}))

	var count int64
	db.Model(&models.UserBotAccess{}).Where("user_id = ? AND bot_id = ?", user.ID, bot.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	grant, err := accessRepo.GetByUserAndBot(user.ID, bot.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.AccessTypePurchased, grant.AccessType)
	assert.Nil(t, grant.ExpiresAt)

	ok, err := accessRepo.HasActive(user.ID, bot.ID, time.Now())
	assert.NoError(t, err)
	assert.True(t, ok)

	// An expired grant stays in the table but is no longer usable
	past := time.Now().Add(-time.Hour)
	assert.NoError(t, accessRepo.Grant(&models.UserBotAccess{
		UserID: user.ID, BotID: bot.ID,
		AccessType: models.AccessTypeTrial, ExpiresAt: &past, IsActive: true,
	}))
	ok, err = accessRepo.HasActive(user.ID, bot.ID, time.Now())
	assert.NoError(t, err)
	assert.False(t, ok)

	// No grant at all is simply false, not an error
	ok, err = accessRepo.HasActive(user.ID, "unknown-bot", time.Now())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestExecutionRepository_LogsPreloadedInOrder(t *testing.T) {
	db := setupDB(t)
	executionRepo := repositories.NewGORMExecutionRepository(db)

	user := createUser(t, db, "grace")
	bot := createBot(t, db, &models.Bot{Name: "Runner Bot", IsFree: true, IsActive: true})

	execution := &models.BotExecution{
		UserID: &user.ID, BotID: &bot.ID,
		ExecutionStatus: models.ExecutionStatusQueued,
	}
	assert.NoError(t, executionRepo.Create(execution))

	base := time.Now()
	for i, msg := range []string{"queued", "starting", "done"} {
		assert.NoError(t, executionRepo.AppendLog(&models.ExecutionLog{
			ExecutionID: execution.ID,
			LogLevel:    "INFO",
			Message:     msg,
			Timestamp:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	fetched, err := executionRepo.GetWithLogs(execution.ID)
	assert.NoError(t, err)
	assert.Len(t, fetched.Logs, 3)
	assert.Equal(t, "queued", fetched.Logs[0].Message)
	assert.Equal(t, "done", fetched.Logs[2].Message)

	mine, err := executionRepo.ListByUser(user.ID, 0, 100)
	assert.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = executionRepo.GetWithLogs("missing-execution")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreatePersistsInactiveFlags(t *testing.T) {
	db := setupDB(t)
	botRepo := repositories.NewGORMBotRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	accessRepo := repositories.NewGORMAccessRepository(db)

	// An entity created inactive must read back inactive; the flag
	// must never be rewritten to a default on the way in.
	bot := createBot(t, db, &models.Bot{Name: "Shelved Bot", Price: 1, IsActive: false})
	freshBot, err := botRepo.Get(bot.ID)
	assert.NoError(t, err)
	assert.False(t, freshBot.IsActive)

	active, err := botRepo.ListActive(0, 100)
	assert.NoError(t, err)
	assert.Empty(t, active)
	found, err := botRepo.Search("shelved", 0, 100)
	assert.NoError(t, err)
	assert.Empty(t, found)

	category := &models.Category{Name: "Retired", IsActive: false}
	assert.NoError(t, categoryRepo.Create(category))
	freshCategory, err := categoryRepo.Get(category.ID)
	assert.NoError(t, err)
	assert.False(t, freshCategory.IsActive)

	user := &models.User{Email: "off@example.com", Username: "off", PasswordHash: "hash", IsActive: false}
	assert.NoError(t, userRepo.Create(user))
	freshUser, err := userRepo.GetByID(user.ID)
	assert.NoError(t, err)
	assert.False(t, freshUser.IsActive)

	assert.NoError(t, accessRepo.Grant(&models.UserBotAccess{
		UserID: user.ID, BotID: bot.ID,
		AccessType: models.AccessTypePurchased, IsActive: false,
	}))
	ok, err := accessRepo.HasActive(user.ID, bot.ID, time.Now())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCRUDList_Pagination(t *testing.T) {
	db := setupDB(t)
	categoryRepo := repositories.NewGORMCategoryRepository(db)

	for i := 0; i < 5; i++ {
		assert.NoError(t, categoryRepo.Create(&models.Category{
			Name: fmt.Sprintf("Category %d", i), IsActive: i%2 == 0,
		}))
	}

	page, err := categoryRepo.List(1, 2)
	assert.NoError(t, err)
	assert.Len(t, page, 2)

	active, err := categoryRepo.ListActive(0, 100)
	assert.NoError(t, err)
	assert.Len(t, active, 3)
}
