package handlers

import (
	"ideaboard/internal/logger"
	"ideaboard/internal/middleware"
	"ideaboard/internal/models"
	"ideaboard/internal/response"
	"ideaboard/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	accounts *services.AccountService
}

func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login stores the user id in the session cookie.
func login(c *gin.Context, user *models.User) bool {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		response.Error(c, services.ErrInternal("Failed to save session", err))
		return false
	}
	return true
}

// Register POST /auth/register creates the account and logs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.accounts.Register(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !login(c, user) {
		return
	}
	logger.L.Info("user registered", zap.String("user_id", user.ID))
	response.Created(c, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !login(c, user) {
		return
	}
	response.OK(c, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		response.Error(c, services.ErrInternal("Failed to clear session", err))
		return
	}
	response.Success(c)
}

// Me GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	response.OK(c, currentUser(c))
}
