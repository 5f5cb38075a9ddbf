// internal/interfaces/http/handlers/coupon.go
package handlers

import (
	"net/http"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/coupon"
	"github.com/gin-gonic/gin"
)

// CouponHandler handles coupon administration endpoints
type CouponHandler struct {
	couponService *coupon.Service
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponService *coupon.Service) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// ListCoupons handles GET /coupons (admin)
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.couponService.ListCoupons()
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"results": len(coupons),
		"data":    coupons,
	})
}

// CreateCoupon handles POST /coupons (admin)
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req coupon.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cpn, err := h.couponService.CreateCoupon(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"data": cpn})
}

// UpdateCoupon handles PUT /coupons/:id (admin)
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req coupon.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cpn, err := h.couponService.UpdateCoupon(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"data": cpn})
}

// DeleteCoupon handles DELETE /coupons/:id (admin)
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.couponService.DeleteCoupon(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
