package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ideaboard/internal/cache"
	"ideaboard/internal/config"
	"ideaboard/internal/dao"
	"ideaboard/internal/db"
	"ideaboard/internal/llm"
	"ideaboard/internal/logger"
	"ideaboard/internal/router"
	"ideaboard/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const localCacheSize = 500

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ideaboard",
	Short: "Idea board API server",
	// serve is the default
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, conn, err := setup()
		if err != nil {
			return err
		}
		return db.Migrate(conn)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (environment variables take precedence)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func setup() (config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, conn, nil
}

func newCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if cfg.RedisURL != "" {
		c, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.L.Info("using redis detail cache")
		return c, nil
	}
	return cache.NewLocal(localCacheSize)
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, conn, err := setup()
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}

	detailCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}

	ideaDAO := dao.NewIdeaDAO(conn)
	commentDAO := dao.NewCommentDAO(conn)
	userDAO := dao.NewUserDAO(conn)

	completer := llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout(),
	})
	if cfg.LLM.APIKey == "" {
		logger.L.Warn("LLM_API_KEY is not set, AI workshop requests will fail")
	}

	gin.SetMode(cfg.GinMode)
	engine := router.New(router.Deps{
		Accounts: services.NewAccountService(userDAO),
		Ideas:    services.NewIdeaService(ideaDAO, detailCache, cfg.CacheTTL()),
		Comments: services.NewCommentService(ideaDAO, commentDAO, detailCache),
		Workshop: services.NewWorkshopService(completer),
		Stats:    services.NewStatsService(userDAO),
		Ping: func(ctx context.Context) error {
			return db.Ping(ctx, conn)
		},
		SessionName:   cfg.SessionName,
		SessionSecret: cfg.SessionSecret,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("ideaboard server starting", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.L.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
