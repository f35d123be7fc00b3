package response

import (
	"errors"
	"net/http"

	"ideaboard/internal/logger"
	"ideaboard/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Status maps a service error kind to its HTTP status code.
func Status(kind services.Kind) int {
	switch kind {
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error aborts the request with {"error": message}. Errors that did not come
// from the services package are reported as a generic internal error.
func Error(c *gin.Context, err error) {
	var e *services.Error
	if !errors.As(err, &e) {
		logger.L.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.AbortWithStatusJSON(Status(e.Kind), gin.H{"error": e.Message})
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func OK(c *gin.Context, obj interface{}) {
	c.JSON(http.StatusOK, obj)
}

func Created(c *gin.Context, obj interface{}) {
	c.JSON(http.StatusCreated, obj)
}

func Success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
