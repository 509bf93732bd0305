// Package main boots the blood-donation directory service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hemobase/hemobase/data"
	"github.com/hemobase/hemobase/data/repository"
	"github.com/hemobase/hemobase/handler"
	"github.com/hemobase/hemobase/middleware"
	"github.com/hemobase/hemobase/service"
	"github.com/ncobase/ncore/config"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/resp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	cleanup, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	log := logger.StdLogger()

	dataLayer, err := data.New(cfg.Data.Database.Master.Driver, cfg.Data.Database.Master.Source, log)
	if err != nil {
		log.Error(context.Background(), "Failed to connect database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dataLayer.Close(); err != nil {
			log.Error(context.Background(), "Failed to close database", "error", err)
		}
	}()

	userRepo, sessionRepo, err := repository.NewSQLiteRepositories(dataLayer.DB())
	if err != nil {
		log.Error(context.Background(), "Failed to initialize repositories", "error", err)
		os.Exit(1)
	}

	// Sessions move to Redis when an address is configured; users stay in
	// the relational store either way.
	if cfg.Data.Redis != nil && cfg.Data.Redis.Addr != "" {
		client, err := data.NewRedis(cfg.Data.Redis.Addr, cfg.Data.Redis.Password, cfg.Data.Redis.Db, log)
		if err != nil {
			log.Error(context.Background(), "Failed to connect redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		sessionRepo = repository.NewRedisSessionRepository(client)
	}

	// Create services; a non-positive or absent session.ttl falls back to
	// the default lifetime.
	sessionTTL := cfg.Viper.GetDuration("session.ttl")
	authService := service.NewAuthService(userRepo, sessionRepo, sessionTTL, log)
	userService := service.NewUserService(userRepo, log)

	// Create handlers
	authHandler := handler.NewAuthHandler(authService, log)
	userHandler := handler.NewUserHandler(userService, log)
	roleHandler := handler.NewRoleHandler(userService, log)

	// Setup router
	if cfg.Environment != "" {
		gin.SetMode(cfg.Environment)
	}

	r := gin.Default()

	// Public routes
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	// Protected routes (require a live session)
	api := r.Group("/")
	api.Use(middleware.SessionAuth(authService, log))
	{
		api.POST("/profile", userHandler.Profile)
		api.POST("/update-profile", userHandler.UpdateProfile)
		api.POST("/set-donation-description", userHandler.SetDonationDescription)

		api.POST("/get-users-by-blood-type", userHandler.ByBloodType)
		api.POST("/get-users-by-city", userHandler.ByCity)
		api.POST("/get-users-by-district", userHandler.ByDistrict)
		api.POST("/get-donors", userHandler.Donors)
		api.POST("/get-beneficiaries", userHandler.Beneficiaries)

		api.POST("/become-donor", roleHandler.BecomeDonor)
		api.POST("/drop-donor", roleHandler.DropDonor)
		api.POST("/become-beneficiary", roleHandler.BecomeBeneficiary)
		api.POST("/drop-beneficiary", roleHandler.DropBeneficiary)
	}

	r.GET("/health", func(c *gin.Context) {
		resp.Success(c.Writer, map[string]string{"status": "healthy"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info(context.Background(), "Starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(context.Background(), "Server failed", "error", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error(ctx, "Server shutdown failed", "error", err)
	}

	log.Info(context.Background(), "Server exited")
}
