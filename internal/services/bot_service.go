package services

import (
	"fmt"
	"time"

	"botmarket/internal/apperrors"
	"botmarket/internal/models"
	"botmarket/internal/repositories"
	"botmarket/internal/schemas"
)

const (
	defaultListLimit = 100
	maxListLimit     = 100
)

// BotFilter selects one of the four catalogue filter modes. The modes
// are mutually exclusive with a fixed precedence:
// free_only > category > search > default active listing.
type BotFilter struct {
	Skip     int
	Limit    int
	Category string
	Search   string
	FreeOnly bool
}

// BotService handles business logic for the bot catalogue.
type BotService struct {
	botRepo    repositories.BotRepository
	accessRepo repositories.AccessRepository
}

// NewBotService creates a new BotService.
func NewBotService(botRepo repositories.BotRepository, accessRepo repositories.AccessRepository) *BotService {
	return &BotService{botRepo: botRepo, accessRepo: accessRepo}
}

// ListBots dispatches to the filter mode selected by the request.
func (s *BotService) ListBots(filter BotFilter) ([]models.Bot, error) {
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	switch {
	case filter.FreeOnly:
		return s.botRepo.ListFree(skip, limit)
	case filter.Category != "":
		return s.botRepo.ListByCategory(filter.Category, skip, limit)
	case filter.Search != "":
		return s.botRepo.Search(filter.Search, skip, limit)
	default:
		return s.botRepo.ListActive(skip, limit)
	}
}

// GetBot retrieves a single bot by ID.
func (s *BotService) GetBot(id string) (*models.Bot, error) {
	return s.botRepo.Get(id)
}

// RegisterDownload checks the user may download the bot, bumps the
// download counter and returns the artifact location. Paid bots need a
// usable access grant; free bots do not.
func (s *BotService) RegisterDownload(user *models.User, botID string) (*schemas.DownloadResponse, error) {
	bot, err := s.botRepo.Get(botID)
	if err != nil {
		return nil, err
	}
	if !bot.IsActive {
		return nil, fmt.Errorf("bot %s is not available: %w", botID, apperrors.ErrNotFound)
	}

	if !bot.IsFree {
		ok, err := s.accessRepo.HasActive(user.ID, botID, time.Now())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no access to bot %s: %w", botID, apperrors.ErrForbidden)
		}
	}

	if err := s.botRepo.IncrementDownloads(botID); err != nil {
		return nil, err
	}
	return &schemas.DownloadResponse{
		BotID:       bot.ID,
		DownloadURL: bot.GithubRepoURL,
	}, nil
}
