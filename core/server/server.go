package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"allmeet-api/core/cache"
	"allmeet-api/core/config"
	"allmeet-api/core/database"
	"allmeet-api/core/logger"
	"allmeet-api/core/middleware"
	"allmeet-api/core/queue"
	"allmeet-api/core/utils"
	"allmeet-api/modules/availability"
	"allmeet-api/modules/board"
	"allmeet-api/modules/notification"
	"allmeet-api/modules/team"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run boots the whole service: config, database, redis, task queue, echo and
// all modules. It blocks until SIGINT/SIGTERM and then shuts down gracefully.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.SQLx().Close(); err != nil {
			logger.Error("close database", err)
		}
	}()

	// Redis and the queue are optional; modules fall back to the database
	// when they are absent.
	var c *cache.Cache
	if cacheClient, err := cache.NewCache(cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, running without cache", "error", err)
	} else {
		c = cacheClient
		defer func() {
			if err := c.Close(); err != nil {
				logger.Error("close redis", err)
			}
		}()
	}

	var q *queue.Queue
	if c != nil {
		q = queue.NewQueue(cfg.Redis)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: utils.GenerateID,
	}))

	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.NewMiddleware()

	notifSvc := notification.Init(e, &db, c, q, mw)
	teamRepo := team.Init(e, &db, c, notifSvc, mw)
	postRepo := board.Init(e, &db, mw)
	availability.Init(e, &db, c, teamRepo, postRepo, notifSvc, mw)

	if q != nil {
		if err := q.Start(); err != nil {
			logger.Error("start task queue", err)
			q = nil
		}
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", err)
		}
	}()
	logger.Info("Server started", "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	if q != nil {
		q.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
