package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/marbles/internal/api/handlers"
	"github.com/playmatatu/marbles/internal/config"
	"github.com/playmatatu/marbles/internal/middleware"
	"github.com/playmatatu/marbles/internal/progress"
	"github.com/playmatatu/marbles/internal/session"
	"github.com/playmatatu/marbles/internal/ws"
)

// Deps are the services the routes are wired to. DB may be nil, in which
// case the account routes are not mounted and the protected routes only
// accept tokens signed elsewhere with the same JWT secret.
type Deps struct {
	DB       *sqlx.DB
	Store    progress.Store
	Sessions *session.Manager
	Hub      *ws.Hub
	Config   *config.Config
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	cfg := d.Config
	router.Use(middleware.CORSMiddleware(cfg))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.Sessions))
		v1.GET("/levels", handlers.ListLevels)
		v1.POST("/preview", handlers.PreviewPath)

		if d.DB != nil {
			auth := v1.Group("/auth")
			{
				auth.POST("/register", handlers.Register(d.DB, cfg))
				auth.POST("/login", handlers.Login(d.DB, cfg))
			}
		} else {
			log.Println("[API] No database: account routes disabled, tokens must be issued externally")
		}

		authed := v1.Group("", middleware.AuthMiddleware(cfg))

		prog := authed.Group("/progress")
		{
			prog.GET("", handlers.GetProgress(d.Store))
			prog.POST("/reset", handlers.ResetProgress(d.Store))
			prog.GET("/history", handlers.GetHistory(d.Store))
		}

		sessions := authed.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(d.Sessions))
			sessions.GET("/:token", handlers.GetSession(d.Sessions))
			sessions.POST("/:token/shot", handlers.Shoot(d.Sessions))
			sessions.POST("/:token/ai-shot", handlers.AIShot(d.Sessions))
			sessions.POST("/:token/reset", handlers.ResetSession(d.Sessions))
			if d.Hub != nil {
				sessions.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), ws.HandleWebSocket(d.Hub))
			}
		}
	}
}
