// internal/interfaces/http/handlers/order.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/order"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/payment"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/user"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/interfaces/http/middleware"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/pkg/pdf"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService   *order.Service
	paymentService *payment.Service
	userService    *user.Service
	pdfService     *pdf.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, paymentService *payment.Service, userService *user.Service, pdfService *pdf.Service) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		paymentService: paymentService,
		userService:    userService,
		pdfService:     pdfService,
	}
}

// CreateCashOrder handles POST /orders/:cartId
func (h *OrderHandler) CreateCashOrder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	cartID, err := parseIDParam(c, "cartId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req order.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ord, err := h.orderService.CreateCashOrder(userID, cartID, req.ToShippingAddress())
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"data": ord})
}

// CreateCheckoutSession handles POST /orders/checkout-session/:cartId
func (h *OrderHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	cartID, err := parseIDParam(c, "cartId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req order.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	quote, err := h.orderService.QuoteCheckout(cartID)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := h.paymentService.CreateCheckoutSession(quote, profile.Email, profile.Name, req.ToShippingAddress())
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"data": gin.H{
			"session_id":  session.ID,
			"session_url": session.URL,
		},
	})
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.orderService.ListOrders(userID, middleware.IsAdminFromContext(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"results": len(resp.Orders),
		"data":    resp,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ord, err := h.orderService.GetOrder(userID, middleware.IsAdminFromContext(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"data": ord})
}

// MarkPaid handles PATCH /orders/:id/pay (admin)
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ord, err := h.orderService.MarkPaid(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"data": ord})
}

// MarkDelivered handles PATCH /orders/:id/deliver (admin)
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ord, err := h.orderService.MarkDelivered(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"data": ord})
}

// DownloadInvoice handles GET /orders/:id/invoice
func (h *OrderHandler) DownloadInvoice(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ord, err := h.orderService.GetOrder(userID, middleware.IsAdminFromContext(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	owner, err := h.userService.GetProfile(ord.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.pdfService.GenerateInvoice(ord, owner.Name, owner.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", ord.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
