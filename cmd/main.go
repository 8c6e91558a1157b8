package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"neobase-ai/internal/apis/routes"
	"neobase-ai/internal/config"
	"neobase-ai/internal/di"
	"neobase-ai/internal/middleware"
	"neobase-ai/pkg/logging"
)

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Failed to load environment variables: %v", err)
	}

	// Initialize dependencies
	di.Initialize()

	logger := logging.New("neobase-ai", config.Env.JSONLogs)

	chartHandler, err := di.GetChartHandler()
	if err != nil {
		log.Fatalf("Failed to get chart handler: %v", err)
	}
	columnValuesHandler, err := di.GetColumnValuesHandler()
	if err != nil {
		log.Fatalf("Failed to get column-values handler: %v", err)
	}
	eventErrorsHandler, err := di.GetEventErrorsHandler()
	if err != nil {
		log.Fatalf("Failed to get event-errors handler: %v", err)
	}
	cancelHandler, err := di.GetCancelHandler()
	if err != nil {
		log.Fatalf("Failed to get cancel handler: %v", err)
	}
	catalogHandler, err := di.GetCatalogHandler()
	if err != nil {
		log.Fatalf("Failed to get catalog handler: %v", err)
	}

	// Setup Gin
	ginApp := gin.New() // Use gin.New() instead of gin.Default()

	// Add custom recovery middleware
	ginApp.Use(middleware.CustomRecoveryMiddleware(logger))

	// Add logging middleware
	ginApp.Use(gin.Logger())

	// CORS
	ginApp.Use(cors.New(cors.Config{
		AllowOrigins: []string{config.Env.CorsAllowedOrigin},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"User-Agent",
		},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(ginApp, routes.Handlers{
		Chart:        chartHandler,
		ColumnValues: columnValuesHandler,
		EventErrors:  eventErrorsHandler,
		Cancel:       cancelHandler,
		Catalog:      catalogHandler,
	}, config.Env.JWTSecret)

	// Create server
	srv := &http.Server{
		Addr:    ":" + config.Env.Port,
		Handler: ginApp,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", config.Env.Port)
		fmt.Printf("Running in %s mode\n", config.Env.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("neobase-ai failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("neobase-ai is shutting down...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("neobase-ai forced to shutdown: %v", err)
	}

	log.Println("neobase-ai has been shut down successfully")
}
