// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/product"
)

// Cart represents a user's shopping cart. Each user has at most one cart;
// Version guards concurrent writers optimistically.
type Cart struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	UserID                  uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalPrice              float64    `gorm:"not null;default:0" json:"total_price"`
	TotalPriceAfterDiscount *float64   `json:"total_price_after_discount,omitempty"`
	Version                 int64      `gorm:"not null;default:0" json:"-"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`

	// Relationships
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE;" json:"items"`
}

// CartItem represents a single cart line, keyed by (product, color).
// Price, title, description and image are snapshots taken when the
// product was added.
type CartItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CartID      uint      `gorm:"not null;index" json:"cart_id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	Color       string    `gorm:"size:100" json:"color"`
	Price       float64   `gorm:"not null" json:"price"`
	Title       string    `gorm:"size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:500" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Product product.Product `gorm:"foreignKey:ProductID" json:"-"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// NumberOfItems returns the count of distinct cart lines
func (c *Cart) NumberOfItems() int {
	return len(c.Items)
}

// FindItem returns the cart line with the given id, or nil
func (c *Cart) FindItem(itemID uint) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// FindLine returns the cart line for (productID, color), or nil
func (c *Cart) FindLine(productID uint, color string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Color == color {
			return &c.Items[i]
		}
	}
	return nil
}

// EffectiveTotal is the amount a buyer actually pays: the discounted
// total when a coupon is applied, the raw total otherwise.
func (c *Cart) EffectiveTotal() float64 {
	if c.TotalPriceAfterDiscount != nil {
		return *c.TotalPriceAfterDiscount
	}
	return c.TotalPrice
}
