package app

import (
	"procomp-service/internal/handler"
	"procomp-service/internal/middleware"
	"procomp-service/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Router 註冊中介層與所有路由
func (c *Container) Router() *gin.Engine {
	cfg := c.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger.WithComponent("http")))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Sessions(c.Sessions, cfg.Session))

	r.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"message": "pong"})
	})

	handler.NewCatalogHandler(c.Catalog).RegisterRoutes(r)
	handler.NewAuthHandler(c.Auth, c.Sessions, cfg.Session).RegisterRoutes(r)
	handler.NewOrderHandler(c.Tickets).RegisterRoutes(r)
	handler.NewTaskHandler(c.Quotes).RegisterRoutes(r)
	handler.NewAdminHandler(c.Admin, c.Sessions, cfg.Session).
		RegisterRoutes(r, middleware.RequireAdmin(c.Auth, c.Sessions))

	return r
}
