// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/cart"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CartHandler handles shopping cart endpoints
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// respondCart writes the cart envelope, line count included
func respondCart(c *gin.Context, status int, crt *cart.Cart, message string) {
	body := gin.H{
		"numberOfItems": crt.NumberOfItems(),
		"data":          crt,
	}
	if message != "" {
		body["message"] = message
	}
	respondSuccess(c, status, body)
}

// AddItem handles POST /cart
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	crt, err := h.cartService.AddItem(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCart(c, http.StatusOK, crt, "Product added to cart successfully")
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	crt, err := h.cartService.GetCart(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCart(c, http.StatusOK, crt, "")
}

// EditQuantity handles PATCH /cart/:itemId
func (h *CartHandler) EditQuantity(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// Stock check runs before anything in the cart is touched
	if err := h.cartService.ValidateItemQuantity(userID, itemID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	crt, err := h.cartService.EditQuantity(userID, itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCart(c, http.StatusOK, crt, "")
}

// ChangeItemColor handles PATCH /cart/:itemId/color
func (h *CartHandler) ChangeItemColor(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Color string `json:"color" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	crt, err := h.cartService.ChangeItemColor(userID, itemID, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCart(c, http.StatusOK, crt, "")
}

// RemoveItem handles DELETE /cart/:itemId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		respondError(c, err)
		return
	}

	crt, err := h.cartService.RemoveItem(userID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCart(c, http.StatusOK, crt, "")
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	if err := h.cartService.Clear(userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ApplyCoupon handles PATCH /cart/applyCoupon
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	var req struct {
		CouponName string `json:"couponName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	crt, err := h.cartService.ApplyCoupon(c.Request.Context(), userID, req.CouponName)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCart(c, http.StatusOK, crt, "")
}
