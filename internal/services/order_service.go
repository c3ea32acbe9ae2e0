package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"botmarket/internal/apperrors"
	"botmarket/internal/models"
	"botmarket/internal/repositories"
	"botmarket/internal/schemas"
)

// OrderService handles business logic related to bot purchases.
type OrderService struct {
	db         *gorm.DB
	botRepo    repositories.BotRepository
	orderRepo  repositories.OrderRepository
	accessRepo repositories.AccessRepository
	publisher  EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(db *gorm.DB, botRepo repositories.BotRepository, orderRepo repositories.OrderRepository, accessRepo repositories.AccessRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		db:         db,
		botRepo:    botRepo,
		orderRepo:  orderRepo,
		accessRepo: accessRepo,
		publisher:  publisher,
	}
}

// CreateOrder purchases the requested bots for the user. Everything
// happens in one transaction: bots are validated, each item freezes the
// bot's current price as price_at_purchase, the total is computed from
// those snapshots, and a permanent purchased access grant is upserted
// per bot. The order.created event goes out only after the commit.
func (s *OrderService) CreateOrder(user *models.User, req *schemas.OrderCreateRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order needs at least one item: %w", apperrors.ErrValidation)
	}

	now := time.Now()
	var created *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		bots := s.botRepo.WithTx(tx)
		orders := s.orderRepo.WithTx(tx)
		access := s.accessRepo.WithTx(tx)

		order := &models.Order{
			UserID:        &user.ID,
			PaymentStatus: models.PaymentStatusPending,
			OrderStatus:   models.OrderStatusProcessing,
		}

		var total float64
		for _, item := range req.Items {
			bot, err := bots.Get(item.BotID)
			if err != nil {
				return err
			}
			// Inactive bots are hidden from the catalogue and read as
			// missing on every path, purchases included.
			if !bot.IsActive {
				return fmt.Errorf("bot %s is not available for purchase: %w", bot.ID, apperrors.ErrNotFound)
			}

			quantity := item.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			price := bot.Price
			if bot.IsFree {
				price = 0
			}

			botID := bot.ID
			order.Items = append(order.Items, models.OrderItem{
				BotID:           &botID,
				Quantity:        quantity,
				PriceAtPurchase: price,
			})
			total += price * float64(quantity)
		}
		order.TotalAmount = total

		if err := orders.Create(order); err != nil {
			return err
		}

		for _, item := range order.Items {
			grant := &models.UserBotAccess{
				UserID:     user.ID,
				BotID:      *item.BotID,
				AccessType: models.AccessTypePurchased,
				GrantedAt:  now,
				IsActive:   true,
			}
			if err := access.Grant(grant); err != nil {
				return err
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent("order.created", map[string]interface{}{
		"order_id":     created.ID,
		"user_id":      user.ID,
		"total_amount": created.TotalAmount,
		"order_status": created.OrderStatus,
	})
	return created, nil
}

// GetOrder retrieves one of the user's orders with its items.
func (s *OrderService) GetOrder(user *models.User, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetWithItems(id)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != user.ID {
		return nil, fmt.Errorf("order %s belongs to another user: %w", id, apperrors.ErrForbidden)
	}
	return order, nil
}

// ListOrders retrieves the user's orders.
func (s *OrderService) ListOrders(user *models.User, skip, limit int) ([]models.Order, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	return s.orderRepo.ListByUser(user.ID, skip, limit)
}

// publishEvent publishes a marketplace event, best effort: a broker
// failure is logged and never fails the request.
func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.publisher.Publish("marketplace", routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
