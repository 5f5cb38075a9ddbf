// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/config"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/pkg/apperror"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const cacheTTL = 5 * time.Minute

// Service handles coupon business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// CreateCouponRequest represents coupon creation data
type CreateCouponRequest struct {
	Name            string    `json:"name" binding:"required"`
	DiscountPercent float64   `json:"discountPercent" binding:"required,gt=0,lte=100"`
	MaxDiscount     float64   `json:"maxDiscount" binding:"required,gt=0"`
	ExpiresAt       time.Time `json:"expiresAt" binding:"required"`
}

// UpdateCouponRequest represents coupon update data
type UpdateCouponRequest struct {
	DiscountPercent *float64   `json:"discountPercent"`
	MaxDiscount     *float64   `json:"maxDiscount"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

// ResolveValid looks up a coupon by name and ensures it has not expired.
// Results are cached in Redis for a short window; cache failures fall
// through to the database.
func (s *Service) ResolveValid(ctx context.Context, name string) (*Coupon, error) {
	canonical := NormalizeName(name)
	if canonical == "" {
		return nil, apperror.Validation("Coupon %s is invalid or expired", name)
	}

	if cached := s.getFromCache(ctx, canonical); cached != nil {
		if cached.IsExpired(time.Now().UTC()) {
			return nil, apperror.Validation("Coupon %s is invalid or expired", name)
		}
		return cached, nil
	}

	var c Coupon
	err := s.db.Where("name = ? AND expires_at > ?", canonical, time.Now().UTC()).First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Validation("Coupon %s is invalid or expired", name)
		}
		return nil, fmt.Errorf("failed to retrieve coupon: %w", err)
	}

	s.putInCache(ctx, &c)
	return &c, nil
}

// CreateCoupon creates a new coupon (admin)
func (s *Service) CreateCoupon(req *CreateCouponRequest) (*Coupon, error) {
	c := Coupon{
		Name:            NormalizeName(req.Name),
		DiscountPercent: req.DiscountPercent,
		MaxDiscount:     req.MaxDiscount,
		ExpiresAt:       req.ExpiresAt.UTC(),
	}

	if err := s.db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return &c, nil
}

// UpdateCoupon updates an existing coupon (admin)
func (s *Service) UpdateCoupon(ctx context.Context, id uint, req *UpdateCouponRequest) (*Coupon, error) {
	var c Coupon
	if err := s.db.Where("id = ?", id).First(&c).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("no coupon found with id %d", id)
		}
		return nil, fmt.Errorf("failed to retrieve coupon: %w", err)
	}

	updates := map[string]interface{}{}
	if req.DiscountPercent != nil {
		updates["discount_percent"] = *req.DiscountPercent
	}
	if req.MaxDiscount != nil {
		updates["max_discount"] = *req.MaxDiscount
	}
	if req.ExpiresAt != nil {
		updates["expires_at"] = req.ExpiresAt.UTC()
	}
	if len(updates) == 0 {
		return &c, nil
	}

	if err := s.db.Model(&c).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	s.invalidateCache(ctx, c.Name)
	return &c, nil
}

// DeleteCoupon removes a coupon (admin)
func (s *Service) DeleteCoupon(ctx context.Context, id uint) error {
	var c Coupon
	if err := s.db.Where("id = ?", id).First(&c).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("no coupon found with id %d", id)
		}
		return fmt.Errorf("failed to retrieve coupon: %w", err)
	}

	if err := s.db.Delete(&c).Error; err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	s.invalidateCache(ctx, c.Name)
	return nil
}

// ListCoupons retrieves all coupons (admin)
func (s *Service) ListCoupons() ([]Coupon, error) {
	var coupons []Coupon
	if err := s.db.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve coupons: %w", err)
	}
	return coupons, nil
}

func (s *Service) cacheKey(name string) string {
	return fmt.Sprintf("coupon:%s", name)
}

func (s *Service) getFromCache(ctx context.Context, name string) *Coupon {
	if s.redisClient == nil {
		return nil
	}

	data, err := s.redisClient.Get(ctx, s.cacheKey(name)).Result()
	if err != nil {
		return nil
	}

	var c Coupon
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil
	}
	return &c
}

func (s *Service) putInCache(ctx context.Context, c *Coupon) {
	if s.redisClient == nil {
		return
	}

	data, err := json.Marshal(c)
	if err != nil {
		return
	}

	if err := s.redisClient.Set(ctx, s.cacheKey(c.Name), data, cacheTTL).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to cache coupon")
	}
}

func (s *Service) invalidateCache(ctx context.Context, name string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, s.cacheKey(name)).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate coupon cache")
	}
}
