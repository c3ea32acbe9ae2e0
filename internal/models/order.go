package models

// Payment and order status values stored on Order. Statuses are plain
// strings in the database; validity is enforced by the service layer.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"

	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Order represents a bot purchase. TotalAmount is computed server-side
// from the item price snapshots, never taken from the client. The user
// reference is nulled if the account is later deleted.
type Order struct {
	Base
	UserID           *string `json:"user_id" gorm:"type:varchar(36);index"`
	TotalAmount      float64 `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	PaymentReference string  `json:"payment_reference" gorm:"type:varchar(255)"`
	PaymentStatus    string  `json:"payment_status" gorm:"type:varchar(50);default:pending"`
	OrderStatus      string  `json:"order_status" gorm:"type:varchar(50);default:processing"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is a single line of an order. PriceAtPurchase freezes the
// bot's price at purchase time; later price changes never touch it.
type OrderItem struct {
	Base
	OrderID         string  `json:"order_id" gorm:"type:varchar(36);not null;index"`
	BotID           *string `json:"bot_id" gorm:"type:varchar(36);index"`
	Quantity        int     `json:"quantity" gorm:"default:1"`
	PriceAtPurchase float64 `json:"price_at_purchase" gorm:"type:decimal(10,2);not null"`
}
