package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marbles/internal/api"
	"github.com/playmatatu/marbles/internal/config"
	"github.com/playmatatu/marbles/internal/database"
	"github.com/playmatatu/marbles/internal/migrations"
	"github.com/playmatatu/marbles/internal/progress"
	"github.com/playmatatu/marbles/internal/redis"
	"github.com/playmatatu/marbles/internal/session"
	"github.com/playmatatu/marbles/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		log.Println("[MIGRATE] Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Sessions still work without Redis; they just are not snapshotted or
	// announced to other instances.
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Printf("[REDIS] Unavailable, continuing without it: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	store := progress.NewSQLStore(db)
	sessions := session.NewManager(store, rdb, cfg)

	hub := ws.NewHub(sessions)
	sessions.SetShotListener(hub.PublishShot)
	go hub.Run(ctx.Done())
	hub.StartEventSubscriber(ctx)

	sessions.StartExpiryWorker(ctx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, api.Deps{
		DB:       db,
		Store:    store,
		Sessions: sessions,
		Hub:      hub,
		Config:   cfg,
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting marbles server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
