// Package web gin server
package web

import (
	"net/http"

	ginMw "github.com/Laisky/gin-middlewares/v7"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	appCtl "github.com/Laisky/files-manager/internal/web/app/controller"
	fileCtl "github.com/Laisky/files-manager/internal/web/file/controller"
	userCtl "github.com/Laisky/files-manager/internal/web/user/controller"
	"github.com/Laisky/files-manager/library/log"
)

var (
	server = gin.New()
)

// Controllers aggregates every HTTP-facing module.
type Controllers struct {
	App   *appCtl.App
	Users *userCtl.Users
	Files *fileCtl.Files
}

// RunServer wires the routes and blocks serving HTTP on addr.
func RunServer(addr string, ctls *Controllers) {
	server.Use(
		gin.Recovery(),
		ginMw.NewLoggerMiddleware(
			ginMw.WithLoggerMwColored(),
			ginMw.WithLevel(log.Logger.Level().String()),
			ginMw.WithLogger(log.Logger.Named("gin")),
		),
	)
	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	server.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})

	RegisterRoutes(server, ctls)

	log.Logger.Info("listening on http", zap.String("addr", addr))
	log.Logger.Panic("httpServer exit", zap.Error(server.Run(addr)))
}

// RegisterRoutes mounts the API route table onto r.
func RegisterRoutes(r *gin.Engine, ctls *Controllers) {
	r.GET("/status", ctls.App.Status)
	r.GET("/stats", ctls.App.Stats)

	r.POST("/users", ctls.Users.PostNew)
	r.GET("/users/me", ctls.Users.GetMe)
	r.GET("/connect", ctls.Users.Connect)
	r.GET("/disconnect", ctls.Users.Disconnect)

	r.POST("/files", ctls.Files.Upload)
	r.GET("/files", ctls.Files.Index)
	r.GET("/files/:id", ctls.Files.Show)
	r.PUT("/files/:id/publish", ctls.Files.Publish)
	r.PUT("/files/:id/unpublish", ctls.Files.Unpublish)
	r.GET("/files/:id/data", ctls.Files.Data)
}
