// internal/domain/product/entity.go
package product

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null;size:255" json:"title"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	Quantity    int            `gorm:"default:0" json:"quantity"` // Stock on hand
	Sold        int            `gorm:"default:0" json:"sold"`
	Colors      string         `gorm:"size:500" json:"colors"` // Comma-separated declared colors
	ImageCover  string         `gorm:"size:500" json:"image_cover"`
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
}

// Category represents product categories
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Image     string         `gorm:"size:500" json:"image"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }

// ColorList returns the declared colors as a slice
func (p *Product) ColorList() []string {
	if p.Colors == "" {
		return nil
	}
	parts := strings.Split(p.Colors, ",")
	colors := make([]string, 0, len(parts))
	for _, part := range parts {
		if c := strings.TrimSpace(part); c != "" {
			colors = append(colors, c)
		}
	}
	return colors
}

// HasColor reports whether color is one of the product's declared colors
func (p *Product) HasColor(color string) bool {
	for _, c := range p.ColorList() {
		if strings.EqualFold(c, color) {
			return true
		}
	}
	return false
}

// IsInStock reports whether any stock remains
func (p *Product) IsInStock() bool {
	return p.Quantity > 0
}
