package handlers

import (
	"ideaboard/internal/middleware"
	"ideaboard/internal/models"
	"ideaboard/internal/response"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into obj, writing a 400 on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// currentUser returns the user resolved by middleware.AuthRequired.
func currentUser(c *gin.Context) *models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}
