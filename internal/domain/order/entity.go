// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/product"
	"gorm.io/gorm"
)

// Payment methods
const (
	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
)

// Country identifies a shipping destination
type Country struct {
	Code string `gorm:"column:country_code;size:2" json:"code"`
	Name string `gorm:"column:country_name;size:100" json:"name"`
}

// ShippingAddress is embedded in Order
type ShippingAddress struct {
	Details    string  `gorm:"size:500" json:"details"`
	Phone      string  `gorm:"size:20" json:"phone"`
	City       string  `gorm:"size:100" json:"city"`
	PostalCode string  `gorm:"size:20" json:"postal_code"`
	Country    Country `gorm:"embedded" json:"country"`
}

// Order represents the order entity
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	PaymentMethod   string          `gorm:"not null;size:20" json:"payment_method"`
	TotalPrice      float64         `gorm:"not null" json:"total_price"`
	TaxPrice        float64         `gorm:"not null;default:0" json:"tax_price"`
	ShippingPrice   float64         `gorm:"not null;default:0" json:"shipping_price"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	IsPaid          bool            `gorm:"default:false" json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at"`
	IsDelivered     bool            `gorm:"default:false" json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;" json:"items"`
}

// OrderItem represents a single ordered line, copied from the cart at
// order time so later product edits cannot rewrite history.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Color     string    `gorm:"size:100" json:"color"`
	Price     float64   `gorm:"not null" json:"price"`
	Title     string    `gorm:"size:255" json:"title"`
	Image     string    `gorm:"size:500" json:"image"`
	CreatedAt time.Time `json:"created_at"`

	Product product.Product `gorm:"foreignKey:ProductID" json:"-"`
}

// ProcessedWebhookEvent records payment-provider event ids that already
// produced an order, so redelivered webhooks cannot create duplicates.
type ProcessedWebhookEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"uniqueIndex;not null;size:255" json:"event_id"`
	OrderID   uint      `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string                 { return "orders" }
func (OrderItem) TableName() string             { return "order_items" }
func (ProcessedWebhookEvent) TableName() string { return "processed_webhook_events" }

// CheckoutCompletion carries the facts extracted from a completed
// payment-provider checkout event.
type CheckoutCompletion struct {
	EventID    string
	CartID     uint
	Email      string
	AmountPaid float64
	Address    ShippingAddress
}
