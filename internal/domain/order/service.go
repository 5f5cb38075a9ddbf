// internal/domain/order/service.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/config"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/cart"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/user"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// AddressRequest represents a shipping address payload
type AddressRequest struct {
	Details    string `json:"details" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    struct {
		Code string `json:"code" binding:"required,len=2"`
		Name string `json:"name" binding:"required"`
	} `json:"country" binding:"required"`
}

// ToShippingAddress converts the payload to the embedded address type
func (r *AddressRequest) ToShippingAddress() ShippingAddress {
	return ShippingAddress{
		Details:    r.Details,
		Phone:      r.Phone,
		City:       r.City,
		PostalCode: r.PostalCode,
		Country: Country{
			Code: strings.ToUpper(r.Country.Code),
			Name: r.Country.Name,
		},
	}
}

// CheckoutQuote is what the payment gateway needs to open a checkout
// session for the user's current cart.
type CheckoutQuote struct {
	CartID uint
	Amount float64
}

// OrderListResponse represents a paginated order list
type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
	Total  int64   `json:"total"`
}

// CreateCashOrder turns the user's cart into an unpaid cash-on-delivery
// order. Order creation, inventory adjustment and cart consumption
// commit or roll back together.
func (s *Service) CreateCashOrder(userID, cartID uint, addr ShippingAddress) (*Order, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	c, err := s.loadCart(tx, "id = ?", cartID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	ord := &Order{
		OrderNumber:     s.generateOrderNumber(),
		UserID:          userID,
		PaymentMethod:   PaymentMethodCash,
		TotalPrice:      cart.Round2(c.EffectiveTotal()),
		TaxPrice:        0,
		ShippingPrice:   0,
		ShippingAddress: addr,
		Items:           orderItemsFromCart(c),
	}

	if err := tx.Create(ord).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := applyInventoryDeltas(tx, c.Items); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := s.consumeCart(tx, c); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return ord, nil
}

// QuoteCheckout returns the amount the payment gateway should charge
// for the given cart.
func (s *Service) QuoteCheckout(cartID uint) (*CheckoutQuote, error) {
	c, err := s.loadCart(s.db, "id = ?", cartID)
	if err != nil {
		return nil, err
	}
	return &CheckoutQuote{
		CartID: c.ID,
		Amount: cart.Round2(c.EffectiveTotal()),
	}, nil
}

// CreateOrderFromCheckout turns a completed checkout event into a paid
// order. The provider's event id is recorded in the same transaction,
// so a redelivered event finds the record and is acknowledged without
// creating a second order. A missing cart is logged and acknowledged
// too: the provider would otherwise retry forever.
func (s *Service) CreateOrderFromCheckout(comp *CheckoutCompletion) (*Order, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var seen ProcessedWebhookEvent
	err := tx.Where("event_id = ?", comp.EventID).First(&seen).Error
	if err == nil {
		tx.Rollback()
		logrus.WithField("event_id", comp.EventID).Info("Webhook event already processed, skipping")
		return nil, nil
	}
	if err != gorm.ErrRecordNotFound {
		tx.Rollback()
		return nil, fmt.Errorf("failed to check webhook event: %w", err)
	}

	c, err := s.loadCart(tx, "id = ?", comp.CartID)
	if err != nil {
		// A missing or empty cart cannot be fulfilled, but the payment
		// is real and the provider will redeliver until acknowledged.
		// Record the event id and ack.
		if apperror.IsNotFound(err) || apperror.KindOf(err) == apperror.KindValidation {
			if err := tx.Create(&ProcessedWebhookEvent{EventID: comp.EventID}).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to record webhook event: %w", err)
			}
			if err := tx.Commit().Error; err != nil {
				return nil, fmt.Errorf("failed to commit transaction: %w", err)
			}
			logrus.WithFields(logrus.Fields{
				"event_id": comp.EventID,
				"cart_id":  comp.CartID,
				"reason":   apperror.MessageOf(err),
			}).Warn("Checkout completed for a cart that cannot be fulfilled")
			return nil, nil
		}
		tx.Rollback()
		return nil, err
	}

	userID, err := s.resolvePayer(tx, comp, c)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now().UTC()
	ord := &Order{
		OrderNumber:     s.generateOrderNumber(),
		UserID:          userID,
		PaymentMethod:   PaymentMethodOnline,
		TotalPrice:      cart.Round2(comp.AmountPaid),
		TaxPrice:        0,
		ShippingPrice:   0,
		ShippingAddress: comp.Address,
		IsPaid:          true,
		PaidAt:          &now,
		Items:           orderItemsFromCart(c),
	}

	if err := tx.Create(ord).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := tx.Create(&ProcessedWebhookEvent{EventID: comp.EventID, OrderID: ord.ID}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record webhook event: %w", err)
	}

	if err := applyInventoryDeltas(tx, c.Items); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := s.consumeCart(tx, c); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return ord, nil
}

// GetOrder retrieves an order, scoped to the owner unless admin
func (s *Service) GetOrder(userID uint, isAdmin bool, orderID uint) (*Order, error) {
	query := s.db.Preload("Items").Where("id = ?", orderID)
	if !isAdmin {
		query = query.Where("user_id = ?", userID)
	}

	var ord Order
	if err := query.First(&ord).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("no order found with id %d", orderID)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &ord, nil
}

// ListOrders retrieves orders with pagination, scoped to the owner
// unless admin
func (s *Service) ListOrders(userID uint, isAdmin bool, page, limit int) (*OrderListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Order{})
	if !isAdmin {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &OrderListResponse{
		Orders: orders,
		Page:   page,
		Limit:  limit,
		Total:  total,
	}, nil
}

// MarkPaid flips the paid flag on an order (admin)
func (s *Service) MarkPaid(orderID uint) (*Order, error) {
	return s.flipFlag(orderID, "is_paid", "paid_at")
}

// MarkDelivered flips the delivered flag on an order (admin)
func (s *Service) MarkDelivered(orderID uint) (*Order, error) {
	return s.flipFlag(orderID, "is_delivered", "delivered_at")
}

func (s *Service) flipFlag(orderID uint, flagCol, atCol string) (*Order, error) {
	var ord Order
	if err := s.db.Preload("Items").Where("id = ?", orderID).First(&ord).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("no order found with id %d", orderID)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{flagCol: true, atCol: now}
	if err := s.db.Model(&ord).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	switch flagCol {
	case "is_paid":
		ord.IsPaid = true
		ord.PaidAt = &now
	case "is_delivered":
		ord.IsDelivered = true
		ord.DeliveredAt = &now
	}
	return &ord, nil
}

func (s *Service) loadCart(tx *gorm.DB, cond string, arg interface{}) (*cart.Cart, error) {
	var c cart.Cart
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.id ASC")
	}).Where(cond, arg).First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("no cart found with id %v", arg)
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	if len(c.Items) == 0 {
		return nil, apperror.Validation("cart is empty")
	}
	return &c, nil
}

// resolvePayer maps the checkout's payer email to a local account,
// falling back to the cart's owner when no account matches.
func (s *Service) resolvePayer(tx *gorm.DB, comp *CheckoutCompletion, c *cart.Cart) (uint, error) {
	if comp.Email != "" {
		var u user.User
		err := tx.Where("email = ?", comp.Email).First(&u).Error
		if err == nil {
			return u.ID, nil
		}
		if err != gorm.ErrRecordNotFound {
			return 0, fmt.Errorf("failed to look up payer: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"event_id": comp.EventID,
			"email":    comp.Email,
		}).Warn("No account matches the payer email, attributing order to the cart owner")
	}
	return c.UserID, nil
}

func (s *Service) consumeCart(tx *gorm.DB, c *cart.Cart) error {
	if err := tx.Where("cart_id = ?", c.ID).Delete(&cart.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	if err := tx.Delete(&cart.Cart{}, c.ID).Error; err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

func (s *Service) generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

func orderItemsFromCart(c *cart.Cart) []OrderItem {
	items := make([]OrderItem, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, OrderItem{
			ProductID: c.Items[i].ProductID,
			Quantity:  c.Items[i].Quantity,
			Color:     c.Items[i].Color,
			Price:     c.Items[i].Price,
			Title:     c.Items[i].Title,
			Image:     c.Items[i].Image,
		})
	}
	return items
}
