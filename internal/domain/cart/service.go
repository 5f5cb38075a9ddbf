// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/config"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/coupon"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/product"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db            *gorm.DB
	config        *config.Config
	couponService *coupon.Service
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config, couponService *coupon.Service) *Service {
	return &Service{
		db:            db,
		config:        cfg,
		couponService: couponService,
	}
}

// AddItemRequest represents add-to-cart data
type AddItemRequest struct {
	ProductID uint   `json:"productId" binding:"required"`
	Color     string `json:"color"`
}

// AddItem puts a product into the user's cart. A line already holding
// the same (product, color) pair gets its quantity bumped instead of a
// duplicate line.
func (s *Service) AddItem(userID uint, req *AddItemRequest) (*Cart, error) {
	var prod product.Product
	err := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("no product found with id %d", req.ProductID)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	if req.Color != "" && prod.Colors != "" && !prod.HasColor(req.Color) {
		return nil, apperror.Validation("color %s is not available for this product", req.Color)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	c, err := s.loadCartForUpdate(tx, userID)
	if err != nil && !apperror.IsNotFound(err) {
		tx.Rollback()
		return nil, err
	}

	if c == nil {
		c = &Cart{UserID: userID}
		if err := tx.Create(c).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
	}

	if line := c.FindLine(prod.ID, req.Color); line != nil {
		line.Quantity++
		if err := tx.Model(line).Update("quantity", line.Quantity).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else {
		item := CartItem{
			CartID:      c.ID,
			ProductID:   prod.ID,
			Quantity:    1,
			Color:       req.Color,
			Price:       prod.Price,
			Title:       prod.Title,
			Description: prod.Description,
			Image:       prod.ImageCover,
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
		c.Items = append(c.Items, item)
	}

	RecalculateTotal(c)
	if err := s.commitTotals(tx, c); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

// GetCart retrieves the user's cart
func (s *Service) GetCart(userID uint) (*Cart, error) {
	return s.loadCartForUpdate(s.db, userID)
}

// ValidateItemQuantity checks a requested quantity against the product's
// available stock without touching the cart.
func (s *Service) ValidateItemQuantity(userID, itemID uint, quantity int) error {
	if quantity < 1 {
		return apperror.Validation("quantity must be at least 1")
	}

	c, err := s.loadCartForUpdate(s.db, userID)
	if err != nil {
		return err
	}

	item := c.FindItem(itemID)
	if item == nil {
		return apperror.NotFound("no cart item found with id %d", itemID)
	}

	var prod product.Product
	if err := s.db.Where("id = ?", item.ProductID).First(&prod).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("no product found with id %d", item.ProductID)
		}
		return fmt.Errorf("failed to retrieve product: %w", err)
	}

	if quantity > prod.Quantity {
		return apperror.Validation("requested quantity %d exceeds available stock %d", quantity, prod.Quantity)
	}
	return nil
}

// EditQuantity sets the absolute quantity of a cart line
func (s *Service) EditQuantity(userID, itemID uint, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, apperror.Validation("quantity must be at least 1")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	c, err := s.loadCartForUpdate(tx, userID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	item := c.FindItem(itemID)
	if item == nil {
		tx.Rollback()
		return nil, apperror.NotFound("no cart item found with id %d", itemID)
	}

	item.Quantity = quantity
	if err := tx.Model(item).Update("quantity", quantity).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	RecalculateTotal(c)
	if err := s.commitTotals(tx, c); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

// ChangeItemColor moves a cart line to a different color. If a line for
// the target (product, color) already exists the two lines are merged,
// so repeating the same change is a no-op.
func (s *Service) ChangeItemColor(userID, itemID uint, newColor string) (*Cart, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	c, err := s.loadCartForUpdate(tx, userID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	item := c.FindItem(itemID)
	if item == nil {
		tx.Rollback()
		return nil, apperror.NotFound("no cart item found with id %d", itemID)
	}

	var prod product.Product
	if err := tx.Where("id = ?", item.ProductID).First(&prod).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("no product found with id %d", item.ProductID)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	if prod.Colors != "" && !prod.HasColor(newColor) {
		tx.Rollback()
		return nil, apperror.Validation("color %s is not available for this product", newColor)
	}

	if item.Color == newColor {
		tx.Rollback()
		return c, nil
	}

	if target := c.FindLine(item.ProductID, newColor); target != nil {
		// Merge into the existing line and drop this one
		target.Quantity += item.Quantity
		if err := tx.Model(target).Update("quantity", target.Quantity).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to merge cart items: %w", err)
		}
		if err := tx.Delete(item).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to remove merged cart item: %w", err)
		}
		c.removeItemLocally(item.ID)
	} else {
		item.Color = newColor
		if err := tx.Model(item).Update("color", newColor).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	}

	RecalculateTotal(c)
	if err := s.commitTotals(tx, c); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

// RemoveItem deletes a single cart line
func (s *Service) RemoveItem(userID, itemID uint) (*Cart, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	c, err := s.loadCartForUpdate(tx, userID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	item := c.FindItem(itemID)
	if item == nil {
		tx.Rollback()
		return nil, apperror.NotFound("no cart item found with id %d", itemID)
	}

	if err := tx.Delete(item).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	c.removeItemLocally(itemID)

	RecalculateTotal(c)
	if err := s.commitTotals(tx, c); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

// Clear deletes the user's cart entirely
func (s *Service) Clear(userID uint) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	c, err := s.loadCartForUpdate(tx, userID)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Where("cart_id = ?", c.ID).Delete(&CartItem{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	if err := tx.Delete(c).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ApplyCoupon applies a named coupon to the cart's current total
func (s *Service) ApplyCoupon(ctx context.Context, userID uint, couponName string) (*Cart, error) {
	cpn, err := s.couponService.ResolveValid(ctx, couponName)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	c, err := s.loadCartForUpdate(tx, userID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	ApplyDiscount(c, cpn.DiscountPercent, cpn.MaxDiscount)
	if err := s.commitTotals(tx, c); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

// loadCartForUpdate fetches the user's cart with its lines
func (s *Service) loadCartForUpdate(tx *gorm.DB, userID uint) (*Cart, error) {
	var c Cart
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.id ASC")
	}).Where("user_id = ?", userID).First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("there is no cart for this user")
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return &c, nil
}

// commitTotals writes the recomputed totals guarded by the cart's
// version counter. A concurrent writer bumps the version first and this
// write then matches zero rows.
func (s *Service) commitTotals(tx *gorm.DB, c *Cart) error {
	result := tx.Model(&Cart{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]interface{}{
			"total_price":                c.TotalPrice,
			"total_price_after_discount": c.TotalPriceAfterDiscount,
			"version":                    c.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save cart: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.Conflict("cart was modified concurrently, please retry")
	}
	c.Version++
	return nil
}

func (c *Cart) removeItemLocally(itemID uint) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}
