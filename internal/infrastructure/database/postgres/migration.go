// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/cart"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/coupon"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/order"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/product"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Dependency order matters: referenced tables first
	models := []interface{}{
		&user.User{},

		&product.Category{},
		&product.Product{},

		&coupon.Coupon{},

		&cart.Cart{},
		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.ProcessedWebhookEvent{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_product ON cart_items(cart_id, product_id)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_name_expires ON coupons(name, expires_at)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_paid_delivered ON orders(is_paid, is_delivered)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedDemoProducts(); err != nil {
		return fmt.Errorf("failed to seed demo products: %w", err)
	}
	if err := m.seedDemoCoupon(); err != nil {
		return fmt.Errorf("failed to seed demo coupon: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates default product categories
func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{Name: "Electronics", Slug: "electronics"},
		{Name: "Clothing", Slug: "clothing"},
		{Name: "Books", Slug: "books"},
		{Name: "Home & Garden", Slug: "home-garden"},
	}

	for _, category := range categories {
		var existing product.Category
		if err := m.db.Where("slug = ?", category.Slug).First(&existing).Error; err != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			log.Printf("✅ Created category: %s", category.Name)
		}
	}
	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing user.User
	if err := m.db.Where("email = ?", "admin@example.com").First(&existing).Error; err == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin1234"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:        "admin@example.com",
		PasswordHash: string(hashedPassword),
		Name:         "Admin",
		IsActive:     true,
		IsAdmin:      true,
	}
	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("✅ Created admin user: admin@example.com")
	return nil
}

// seedDemoProducts creates a few products for development
func (m *Migration) seedDemoProducts() error {
	var count int64
	m.db.Model(&product.Product{}).Count(&count)
	if count > 0 {
		return nil
	}

	demoProducts := []product.Product{
		{
			Title:       "Wireless Headphones",
			Slug:        "wireless-headphones",
			Description: "Over-ear wireless headphones with active noise cancellation and long battery life.",
			Price:       159.99,
			Quantity:    30,
			Colors:      "black,white,blue",
			ImageCover:  "https://example.com/images/headphones.jpg",
			CategoryID:  1,
			IsActive:    true,
		},
		{
			Title:       "Cotton T-Shirt",
			Slug:        "cotton-t-shirt",
			Description: "Plain cotton t-shirt, regular fit.",
			Price:       19.99,
			Quantity:    100,
			Colors:      "red,green,black",
			ImageCover:  "https://example.com/images/tshirt.jpg",
			CategoryID:  2,
			IsActive:    true,
		},
		{
			Title:       "Mechanical Keyboard",
			Slug:        "mechanical-keyboard",
			Description: "Tenkeyless mechanical keyboard with hot-swappable switches.",
			Price:       89.50,
			Quantity:    45,
			Colors:      "",
			ImageCover:  "https://example.com/images/keyboard.jpg",
			CategoryID:  1,
			IsActive:    true,
		},
	}

	for _, prod := range demoProducts {
		if err := m.db.Create(&prod).Error; err != nil {
			log.Printf("⚠️ Failed to create demo product %s: %v", prod.Slug, err)
		} else {
			log.Printf("✅ Created demo product: %s", prod.Title)
		}
	}
	return nil
}

// seedDemoCoupon creates a sample coupon for development
func (m *Migration) seedDemoCoupon() error {
	var existing coupon.Coupon
	if err := m.db.Where("name = ?", "WELCOME10").First(&existing).Error; err == nil {
		return nil
	}

	demo := coupon.Coupon{
		Name:            "WELCOME10",
		DiscountPercent: 10,
		MaxDiscount:     50,
		ExpiresAt:       time.Now().UTC().AddDate(0, 3, 0),
	}
	if err := m.db.Create(&demo).Error; err != nil {
		return err
	}

	log.Println("✅ Created demo coupon: WELCOME10")
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"processed_webhook_events",
		"order_items",
		"orders",
		"cart_items",
		"carts",
		"coupons",
		"products",
		"categories",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		}
	}

	log.Println("✅ All tables dropped")
	return nil
}
