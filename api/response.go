package api

import (
	"errors"
	"net/http"
	"strconv"

	"vportfolio/portfolio-api/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail maps a service error to its HTTP response. Internal and storage
// failures are logged with their cause and answered with a generic
// message; everything else carries the service's own message.
func fail(c *gin.Context, err error) {
	requestID := c.GetString("requestID")
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)

	message := "Internal server error"

	var ae *apperror.Error
	if errors.As(err, &ae) && status < http.StatusInternalServerError {
		message = ae.Message
	}

	if status >= http.StatusInternalServerError {
		zap.L().Error("Request failed", zap.String("requestID", requestID), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":     string(kind),
		"message":   message,
		"requestID": requestID,
	})
}

// paramID parses the :id path parameter. On failure it writes the 400
// response itself and returns false.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		fail(c, apperror.Validation("id must be a positive integer"))
		return 0, false
	}

	return uint(id), true
}
