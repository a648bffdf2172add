package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/authgate/backend/internal/config"
	"github.com/authgate/backend/internal/db"
	"github.com/authgate/backend/internal/handler"
	"github.com/authgate/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	ctx := context.Background()
	pg, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		logger.Error("postgres init failed", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.EnsureAuthSchema(ctx); err != nil {
		logger.Error("schema init failed", "error", err)
		os.Exit(1)
	}

	authService, err := service.NewAuthService(pg, cfg.Auth)
	if err != nil {
		logger.Error("auth service init failed", "error", err)
		os.Exit(1)
	}

	router := gin.Default()
	router.GET("/ping", handler.Ping)
	router.GET("/", handler.Root)

	api := router.Group("/api/v1")
	if origins := cfg.Server.AllowedOrigins; origins != "" {
		api.Use(handler.CORSMiddleware(strings.Split(origins, ","), true))
	}
	if cfg.Auth.GateKey != "" {
		api.Use(handler.GateMiddleware(cfg.Auth.GateKey))
	}

	authHandler := handler.NewAuthHandler(authService)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/logout-all", authHandler.LogoutAllDevices)
	auth.GET("/me", handler.AuthMiddleware(authService), authHandler.Me)

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
