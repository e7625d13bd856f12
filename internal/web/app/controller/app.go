// Package controller exposes service health and usage counters.
package controller

import (
	"context"
	"net/http"
	"time"

	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
)

const statusTimeout = 5 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter reports the number of records in a collection.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// App handles /status and /stats.
type App struct {
	logger glog.Logger
	db     Pinger
	redis  Pinger
	users  Counter
	files  Counter
}

// New creates the app controller.
func New(logger glog.Logger, db, redis Pinger, users, files Counter) *App {
	return &App{
		logger: logger,
		db:     db,
		redis:  redis,
		users:  users,
		files:  files,
	}
}

// Status handles GET /status.
func (a *App) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusTimeout)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{
		"redis": a.redis.Ping(ctx) == nil,
		"db":    a.db.Ping(ctx) == nil,
	})
}

// Stats handles GET /stats.
func (a *App) Stats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusTimeout)
	defer cancel()

	users, err := a.users.Count(ctx)
	if err != nil {
		a.logger.Error("count users", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	files, err := a.files.Count(ctx)
	if err != nil {
		a.logger.Error("count files", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "files": files})
}
