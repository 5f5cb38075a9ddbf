// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"testing"
	"time"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/config"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/coupon"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/product"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database handle: %v", err)
	}
	// One in-memory database, not one per pooled connection
	sqlDB.SetMaxOpenConns(1)

	models := []interface{}{
		&product.Category{},
		&product.Product{},
		&coupon.Coupon{},
		&Cart{},
		&CartItem{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			t.Fatalf("failed to migrate %T: %v", model, err)
		}
	}

	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	cfg := &config.Config{}
	couponService := coupon.NewService(db, nil, cfg)
	return NewService(db, cfg, couponService), db
}

func seedProduct(t *testing.T, db *gorm.DB, title string, price float64, quantity int, colors string) *product.Product {
	t.Helper()

	category := product.Category{Name: "Test", Slug: "test-" + title}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	prod := product.Product{
		Title:      title,
		Slug:       title,
		Price:      price,
		Quantity:   quantity,
		Colors:     colors,
		CategoryID: category.ID,
		IsActive:   true,
	}
	if err := db.Create(&prod).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return &prod
}

func TestAddItemMergesSameProductColor(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "shirt", 10, 50, "red,blue")

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID, Color: "red"}); err != nil {
		t.Fatalf("first AddItem: %v", err)
	}
	c, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID, Color: "red"})
	if err != nil {
		t.Fatalf("second AddItem: %v", err)
	}

	if len(c.Items) != 1 {
		t.Fatalf("got %d lines, want 1", len(c.Items))
	}
	if c.Items[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", c.Items[0].Quantity)
	}
	if c.TotalPrice != 20 {
		t.Errorf("total = %v, want 20", c.TotalPrice)
	}

	// Different color gets its own line
	c, err = svc.AddItem(1, &AddItemRequest{ProductID: prod.ID, Color: "blue"})
	if err != nil {
		t.Fatalf("AddItem blue: %v", err)
	}
	if len(c.Items) != 2 {
		t.Errorf("got %d lines, want 2", len(c.Items))
	}
	if c.TotalPrice != 30 {
		t.Errorf("total = %v, want 30", c.TotalPrice)
	}
}

func TestAddItemRejectsUndeclaredColor(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "shirt", 10, 50, "red,blue")

	_, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID, Color: "green"})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddItem(1, &AddItemRequest{ProductID: 999})
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("got %v, want not found error", err)
	}
}

func TestAddItemSnapshotsProductFields(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "shirt", 12.50, 50, "")
	prod.Description = "soft cotton"
	prod.ImageCover = "shirt.jpg"
	db.Save(prod)

	c, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	item := c.Items[0]
	if item.Price != 12.50 || item.Title != "shirt" || item.Description != "soft cotton" || item.Image != "shirt.jpg" {
		t.Errorf("snapshot mismatch: %+v", item)
	}

	// Later price changes must not touch the snapshot
	db.Model(prod).Update("price", 99)
	c, err = svc.GetCart(1)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if c.Items[0].Price != 12.50 {
		t.Errorf("snapshot price = %v, want 12.50", c.Items[0].Price)
	}
}

func TestEditQuantity(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "shirt", 10, 50, "")

	c, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	c, err = svc.EditQuantity(1, c.Items[0].ID, 5)
	if err != nil {
		t.Fatalf("EditQuantity: %v", err)
	}
	if c.Items[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", c.Items[0].Quantity)
	}
	if c.TotalPrice != 50 {
		t.Errorf("total = %v, want 50", c.TotalPrice)
	}
}

func TestEditQuantityClearsDiscount(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "shirt", 100, 50, "")
	seedCoupon(t, db, "SAVE20", 20, 50)

	c, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.ApplyCoupon(context.Background(), 1, "SAVE20"); err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}

	c, err = svc.EditQuantity(1, c.Items[0].ID, 2)
	if err != nil {
		t.Fatalf("EditQuantity: %v", err)
	}
	if c.TotalPriceAfterDiscount != nil {
		t.Errorf("discount survived a quantity edit: %v", *c.TotalPriceAfterDiscount)
	}
}

func TestValidateItemQuantityStockBound(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "shirt", 10, 3, "")

	c, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	err = svc.ValidateItemQuantity(1, c.Items[0].ID, 5)
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("got %v, want validation error", err)
	}

	// The failed check must not have touched the cart
	c, err = svc.GetCart(1)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if c.Items[0].Quantity != 1 {
		t.Errorf("quantity = %d, want 1", c.Items[0].Quantity)
	}

	if err := svc.ValidateItemQuantity(1, c.Items[0].ID, 3); err != nil {
		t.Errorf("quantity within stock rejected: %v", err)
	}
}

func TestChangeItemColorMergesDuplicates(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "shirt", 10, 50, "red,blue")

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID, Color: "red"}); err != nil {
		t.Fatalf("AddItem red: %v", err)
	}
	c, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID, Color: "blue"})
	if err != nil {
		t.Fatalf("AddItem blue: %v", err)
	}
	blueLine := c.FindLine(prod.ID, "blue")

	c, err = svc.ChangeItemColor(1, blueLine.ID, "red")
	if err != nil {
		t.Fatalf("ChangeItemColor: %v", err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("got %d lines, want 1 after merge", len(c.Items))
	}
	if c.Items[0].Color != "red" || c.Items[0].Quantity != 2 {
		t.Errorf("merged line = %+v, want red qty 2", c.Items[0])
	}
}

func TestChangeItemColorSameColorIsNoop(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "shirt", 10, 50, "red,blue")

	c, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID, Color: "red"})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	c, err = svc.ChangeItemColor(1, c.Items[0].ID, "red")
	if err != nil {
		t.Fatalf("ChangeItemColor: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 1 {
		t.Errorf("no-op change altered the cart: %+v", c.Items)
	}
}

func TestRemoveItem(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "shirt", 10, 50, "red,blue")

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID, Color: "red"}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	c, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID, Color: "blue"})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	c, err = svc.RemoveItem(1, c.Items[0].ID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(c.Items) != 1 {
		t.Errorf("got %d lines, want 1", len(c.Items))
	}
	if c.TotalPrice != 10 {
		t.Errorf("total = %v, want 10", c.TotalPrice)
	}

	_, err = svc.RemoveItem(1, 9999)
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("got %v, want not found error", err)
	}
}

func TestClearCart(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "shirt", 10, 50, "")

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.Clear(1); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	_, err := svc.GetCart(1)
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("got %v, want not found error after clear", err)
	}
}

func TestApplyCoupon(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "laptop", 1000, 50, "")
	seedCoupon(t, db, "SAVE20", 20, 50)

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	c, err := svc.ApplyCoupon(context.Background(), 1, "SAVE20")
	if err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}
	if c.TotalPriceAfterDiscount == nil {
		t.Fatal("no discount recorded")
	}
	// 20% of 1000 is 200, capped at 50
	if *c.TotalPriceAfterDiscount != 950 {
		t.Errorf("discounted total = %v, want 950", *c.TotalPriceAfterDiscount)
	}
}

func TestApplyCouponUnknown(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "laptop", 1000, 50, "")

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	_, err := svc.ApplyCoupon(context.Background(), 1, "NOPE")
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestCommitTotalsDetectsConcurrentWrite(t *testing.T) {
	svc, db := newTestService(t)
	prod := seedProduct(t, db, "shirt", 10, 50, "")

	c, err := svc.AddItem(1, &AddItemRequest{ProductID: prod.ID})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	stale := *c

	// Another writer bumps the version underneath us
	if err := db.Model(&Cart{}).Where("id = ?", c.ID).
		Update("version", c.Version+1).Error; err != nil {
		t.Fatalf("failed to bump version: %v", err)
	}

	err = svc.commitTotals(db, &stale)
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Errorf("got %v, want conflict error", err)
	}
}

func seedCoupon(t *testing.T, db *gorm.DB, name string, percent, max float64) {
	t.Helper()
	c := coupon.Coupon{
		Name:            name,
		DiscountPercent: percent,
		MaxDiscount:     max,
		ExpiresAt:       time.Now().UTC().Add(24 * time.Hour),
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("failed to seed coupon: %v", err)
	}
}
