// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// UserAdminHandler handles user administration endpoints
type UserAdminHandler struct {
	userService *user.Service
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(userService *user.Service) *UserAdminHandler {
	return &UserAdminHandler{userService: userService}
}

// ListUsers handles GET /admin/users
func (h *UserAdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, total, err := h.userService.ListUsers(page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"results": len(users),
		"total":   total,
		"data":    users,
	})
}

// SetUserActive handles PUT /admin/users/:id/active
func (h *UserAdminHandler) SetUserActive(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.userService.SetActive(userID, *req.Active); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "User updated"})
}

// DeleteUser handles DELETE /admin/users/:id
func (h *UserAdminHandler) DeleteUser(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.userService.DeleteUser(userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
