package router

import (
	"context"
	"net/http"

	"ideaboard/internal/handlers"
	"ideaboard/internal/middleware"
	"ideaboard/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Accounts *services.AccountService
	Ideas    *services.IdeaService
	Comments *services.CommentService
	Workshop *services.WorkshopService
	Stats    *services.StatsService
	Ping     func(ctx context.Context) error

	SessionName   string
	SessionSecret string
}

// New builds the engine with sessions, logging, metrics and every route.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.PrometheusMiddleware())

	store := cookie.NewStore([]byte(d.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(d.SessionName, store))
	r.Use(middleware.LoadUser(d.Accounts))
	r.Use(middleware.RequestLogger())

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Accounts)
	ideaHandler := handlers.NewIdeaHandler(d.Ideas)
	voteHandler := handlers.NewVoteHandler(d.Ideas)
	commentHandler := handlers.NewCommentHandler(d.Comments)
	workshopHandler := handlers.NewWorkshopHandler(d.Workshop)
	userHandler := handlers.NewUserHandler(d.Stats)
	healthHandler := handlers.NewHealthHandler(d.Ping)

	// 公共路由 (Public Routes)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ideas", ideaHandler.List)       // 想法列表
	r.GET("/ideas/:id", ideaHandler.Detail) // 想法详情

	r.POST("/auth/register", authHandler.Register) // 注册并登录
	r.POST("/auth/login", authHandler.Login)       // 登录
	r.POST("/auth/logout", authHandler.Logout)     // 退出登录

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/auth/me", authHandler.Me)

		authorized.POST("/ideas", ideaHandler.Create)                             // 提交想法
		authorized.PATCH("/ideas/:id", ideaHandler.Update)                        // 作者编辑
		authorized.DELETE("/ideas/:id", ideaHandler.Delete)                       // 作者删除
		authorized.POST("/ideas/:id/vote", voteHandler.Toggle)                    // 投票/取消投票
		authorized.POST("/ideas/:id/comments", commentHandler.Create)             // 发表评论
		authorized.POST("/comments/:id/reactions", commentHandler.ToggleReaction) // 表情回应

		authorized.GET("/user/stats", userHandler.Stats)

		authorized.POST("/ai/develop", workshopHandler.Develop)     // AI 工作坊对话
		authorized.POST("/ai/summarize", workshopHandler.Summarize) // AI 总结
	}
}
