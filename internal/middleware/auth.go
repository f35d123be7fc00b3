package middleware

import (
	"context"

	"ideaboard/internal/logger"
	"ideaboard/internal/models"
	"ideaboard/internal/response"
	"ideaboard/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CheckUserKey   = "user"
	SessionUserKey = "user_id"
)

type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// LoadUser retrieves user from session and sets to context. A session that
// names a deleted user is cleared.
func LoadUser(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(SessionUserKey).(string)

		if userID != "" {
			user, err := users.FindByID(c.Request.Context(), userID)
			switch {
			case err == nil:
				c.Set(CheckUserKey, user)
			case services.KindOf(err) == services.KindNotFound:
				session.Delete(SessionUserKey)
				_ = session.Save()
			default:
				logger.L.Warn("load session user", zap.String("user_id", userID), zap.Error(err))
			}
		}
		c.Next()
	}
}

// AuthRequired rejects requests without a resolved user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			response.Error(c, services.ErrUnauthorized())
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(CheckUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// CallerID is the current user's id, or "" for anonymous requests.
func CallerID(c *gin.Context) string {
	if user, ok := CurrentUser(c); ok {
		return user.ID
	}
	return ""
}
