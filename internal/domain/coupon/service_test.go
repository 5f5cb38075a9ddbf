// internal/domain/coupon/service_test.go
package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/config"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
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
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Coupon{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewService(db, nil, &config.Config{})
}

func TestResolveValid(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateCoupon(&CreateCouponRequest{
		Name:            "summer25",
		DiscountPercent: 25,
		MaxDiscount:     100,
		ExpiresAt:       time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}
	if created.Name != "SUMMER25" {
		t.Errorf("name = %q, want canonical SUMMER25", created.Name)
	}

	// Lookup is case-insensitive via normalization
	c, err := svc.ResolveValid(context.Background(), "  Summer25 ")
	if err != nil {
		t.Fatalf("ResolveValid: %v", err)
	}
	if c.DiscountPercent != 25 || c.MaxDiscount != 100 {
		t.Errorf("resolved coupon = %+v", c)
	}
}

func TestResolveValidRejectsExpired(t *testing.T) {
	svc := newTestService(t)

	expired := Coupon{
		Name:            "OLD",
		DiscountPercent: 10,
		MaxDiscount:     50,
		ExpiresAt:       time.Now().UTC().Add(-time.Hour),
	}
	if err := svc.db.Create(&expired).Error; err != nil {
		t.Fatalf("failed to seed coupon: %v", err)
	}

	_, err := svc.ResolveValid(context.Background(), "OLD")
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestResolveValidUnknown(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ResolveValid(context.Background(), "MISSING")
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestDeleteCoupon(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateCoupon(&CreateCouponRequest{
		Name:            "GONE",
		DiscountPercent: 10,
		MaxDiscount:     20,
		ExpiresAt:       time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}

	if err := svc.DeleteCoupon(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteCoupon: %v", err)
	}

	_, err = svc.ResolveValid(context.Background(), "GONE")
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("got %v, want validation error after delete", err)
	}

	err = svc.DeleteCoupon(context.Background(), created.ID)
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("got %v, want not found error", err)
	}
}
