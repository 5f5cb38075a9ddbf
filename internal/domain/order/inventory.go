// internal/domain/order/inventory.go
package order

import (
	"fmt"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/cart"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/product"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/pkg/apperror"
	"gorm.io/gorm"
)

// applyInventoryDeltas decrements stock and increments the sold counter
// for every cart line, inside the caller's transaction. The WHERE guard
// on remaining quantity makes the pass all-or-none: one short product
// fails the whole batch and the caller rolls back.
func applyInventoryDeltas(tx *gorm.DB, items []cart.CartItem) error {
	for i := range items {
		item := &items[i]
		result := tx.Model(&product.Product{}).
			Where("id = ? AND quantity >= ?", item.ProductID, item.Quantity).
			Updates(map[string]interface{}{
				"quantity": gorm.Expr("quantity - ?", item.Quantity),
				"sold":     gorm.Expr("sold + ?", item.Quantity),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to adjust inventory for product %d: %w", item.ProductID, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.Validation("insufficient stock for product %s", item.Title)
		}
	}
	return nil
}
