// internal/interfaces/http/handlers/webhook_test.go
package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/config"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/cart"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/order"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/payment"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/product"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/user"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWebhookSecret = "whsec_handler_test"

func newWebhookEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	sqlDB.SetMaxOpenConns(1)

	models := []interface{}{
		&user.User{},
		&product.Category{},
		&product.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
		&order.ProcessedWebhookEvent{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			t.Fatalf("failed to migrate %T: %v", model, err)
		}
	}

	cfg := &config.Config{}
	cfg.External.Stripe.SecretKey = "sk_test_dummy"
	cfg.External.Stripe.WebhookSecret = testWebhookSecret

	handler := NewWebhookHandler(payment.NewService(cfg), order.NewService(db, cfg))

	router := gin.New()
	router.POST("/webhook-checkout", handler.HandleCheckoutWebhook)
	return router, db
}

func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutEventPayload(t *testing.T, cartID uint) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":          "evt_handler_001",
		"api_version": "2022-11-15",
		"type":        "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":                  "cs_handler_001",
				"client_reference_id": strconv.FormatUint(uint64(cartID), 10),
				"customer_email":      "buyer@example.com",
				"amount_total":        20000,
				"metadata": map[string]string{
					"details":      "14 Tahrir St",
					"phone":        "+201001234567",
					"city":         "Cairo",
					"postalCode":   "11511",
					"country code": "EG",
					"country name": "Egypt",
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("failed to build event payload: %v", err)
	}
	return payload
}

func postWebhook(router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook-checkout", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	router, db := newWebhookEnv(t)
	payload := checkoutEventPayload(t, 1)

	rec := postWebhook(router, payload, signPayload(payload, "whsec_wrong"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	// Nothing may have been recorded off an unverified event
	var orderCount, eventCount int64
	db.Model(&order.Order{}).Count(&orderCount)
	db.Model(&order.ProcessedWebhookEvent{}).Count(&eventCount)
	if orderCount != 0 || eventCount != 0 {
		t.Errorf("state changed: orders=%d events=%d", orderCount, eventCount)
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	router, _ := newWebhookEnv(t)
	payload := checkoutEventPayload(t, 1)

	rec := postWebhook(router, payload, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookFulfillsCheckout(t *testing.T) {
	router, db := newWebhookEnv(t)

	category := product.Category{Name: "Test", Slug: "test"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	prod := product.Product{
		Title: "laptop", Slug: "laptop", Price: 100, Quantity: 10,
		CategoryID: category.ID, IsActive: true,
	}
	if err := db.Create(&prod).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	c := cart.Cart{
		UserID:     7,
		TotalPrice: 200,
		Items:      []cart.CartItem{{ProductID: prod.ID, Quantity: 2, Price: 100, Title: "laptop"}},
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("failed to seed cart: %v", err)
	}

	payload := checkoutEventPayload(t, c.ID)
	rec := postWebhook(router, payload, signPayload(payload, testWebhookSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var ord order.Order
	if err := db.Preload("Items").First(&ord).Error; err != nil {
		t.Fatalf("no order created: %v", err)
	}
	if !ord.IsPaid || ord.TotalPrice != 200 || ord.UserID != 7 {
		t.Errorf("order = %+v", ord)
	}
	if ord.ShippingAddress.City != "Cairo" || ord.ShippingAddress.Country.Code != "EG" {
		t.Errorf("address = %+v", ord.ShippingAddress)
	}

	// Replayed delivery is acknowledged without a second order
	rec = postWebhook(router, payload, signPayload(payload, testWebhookSecret))
	if rec.Code != http.StatusOK {
		t.Errorf("replay status = %d, want 200", rec.Code)
	}
	var orderCount int64
	db.Model(&order.Order{}).Count(&orderCount)
	if orderCount != 1 {
		t.Errorf("order count = %d, want 1", orderCount)
	}
}

func TestWebhookAcknowledgesEmptyCart(t *testing.T) {
	router, db := newWebhookEnv(t)

	c := cart.Cart{UserID: 3}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("failed to seed cart: %v", err)
	}

	// An authenticated event must be acked even when the cart holds
	// nothing to fulfill, or the provider retries forever
	payload := checkoutEventPayload(t, c.ID)
	rec := postWebhook(router, payload, signPayload(payload, testWebhookSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var orderCount, eventCount int64
	db.Model(&order.Order{}).Count(&orderCount)
	db.Model(&order.ProcessedWebhookEvent{}).Count(&eventCount)
	if orderCount != 0 {
		t.Errorf("order count = %d, want 0", orderCount)
	}
	if eventCount != 1 {
		t.Errorf("event record count = %d, want 1", eventCount)
	}
}

func TestWebhookAcknowledgesOtherEvents(t *testing.T) {
	router, db := newWebhookEnv(t)

	payload, err := json.Marshal(map[string]interface{}{
		"id":          "evt_handler_002",
		"api_version": "2022-11-15",
		"type":        "payment_intent.succeeded",
		"data":        map[string]interface{}{"object": map[string]interface{}{"id": "pi_1"}},
	})
	if err != nil {
		t.Fatalf("failed to build payload: %v", err)
	}

	rec := postWebhook(router, payload, signPayload(payload, testWebhookSecret))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var orderCount int64
	db.Model(&order.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Errorf("order count = %d, want 0", orderCount)
	}
}
