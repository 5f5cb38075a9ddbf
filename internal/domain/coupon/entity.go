// internal/domain/coupon/entity.go
package coupon

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Coupon represents a discount coupon
type Coupon struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"uniqueIndex;not null;size:100" json:"name"`
	DiscountPercent float64        `gorm:"not null" json:"discount_percent"`
	MaxDiscount     float64        `gorm:"not null" json:"max_discount"` // Absolute cap on the discount amount
	ExpiresAt       time.Time      `gorm:"not null" json:"expires_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// IsExpired reports whether the coupon has passed its expiry time
func (c *Coupon) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// NormalizeName canonicalizes a coupon name for lookup
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
