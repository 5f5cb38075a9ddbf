// internal/interfaces/http/handlers/response.go
package handlers

import (
	"net/http"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondSuccess writes the standard success envelope
func respondSuccess(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"status": "success"}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondError maps a domain error to its HTTP status. Anything that is
// not a typed application error is a 500, logged with its real cause
// and reported with a generic message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindValidation:
		status = http.StatusBadRequest
	case apperror.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperror.KindForbidden:
		status = http.StatusForbidden
	case apperror.KindConflict:
		status = http.StatusConflict
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Unhandled error")
	}

	c.JSON(status, gin.H{
		"status":  "error",
		"message": apperror.MessageOf(err),
	})
}

// respondBindError reports a request-body binding failure
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": err.Error(),
	})
}
