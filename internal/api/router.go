package api

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/lumen-studio/lumen-api/internal/api/handlers"
	apimiddleware "github.com/lumen-studio/lumen-api/internal/api/middleware"
	"github.com/lumen-studio/lumen-api/internal/config"
	"github.com/lumen-studio/lumen-api/internal/metrics"
	"github.com/lumen-studio/lumen-api/internal/middleware"
	"github.com/lumen-studio/lumen-api/internal/services"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, version string) (*gin.Engine, error) {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.HealthCheck)

	// Bootstrap endpoint (one-time admin setup)
	bootstrapHandler := handlers.NewBootstrapHandler(db)
	router.POST("/api/bootstrap/set-admin", bootstrapHandler.SetAdminRole)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Shared services
	recipeService := services.NewRecipeService(db)
	presetService := services.NewPresetService()
	sessionRegistry := services.NewSessionRegistry(recipeService, presetService)
	creditsService := services.NewCreditsService(db)

	cwMetrics, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
	}

	editHandler, err := handlers.NewEditHandler(
		cfg, sessionRegistry, recipeService, creditsService, presetService, cwMetrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize edit handler: %w", err)
	}

	// Auth routes (public)
	auth := router.Group("/api/auth")
	{
		authHandler := handlers.NewAuthHandler(db, cfg)
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout) // Logout (clears cookies)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// Protected API routes v1
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware(db, cfg))
	{
		// Recipe CRUD
		recipeHandler := handlers.NewRecipeHandler(recipeService, sessionRegistry)
		v1.POST("/recipes", recipeHandler.CreateRecipe)
		v1.GET("/recipes", recipeHandler.ListRecipes)
		v1.GET("/recipes/:id", recipeHandler.GetRecipe)

		// Editing lifecycle - propose, preview, accept, reject, export
		v1.POST("/recipes/:id/propose", editHandler.Propose)
		v1.GET("/recipes/:id/preview", editHandler.Preview)
		v1.POST("/recipes/:id/accept", editHandler.Accept)
		v1.POST("/recipes/:id/reject", editHandler.Reject)
		v1.POST("/recipes/:id/export", editHandler.Export)

		// User/dashboard endpoints
		userHandler := handlers.NewUserHandler(db)
		v1.GET("/me", userHandler.GetProfile)
		v1.GET("/credits", userHandler.GetCredits)
		v1.GET("/usage/stats", userHandler.GetUsageStats)
		v1.GET("/usage/history", userHandler.GetUsageHistory)
	}

	// Admin API routes (admin only, always JWT)
	admin := router.Group("/api/admin")
	admin.Use(middleware.JWTAuth(db, cfg), middleware.AdminRequired())
	{
		adminHandler := handlers.NewAdminHandler(db)
		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/users/:id", adminHandler.GetUserDetails)
		admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
		admin.PUT("/users/:id/toggle-active", adminHandler.ToggleUserActive)
		admin.PUT("/users/:id/credits", adminHandler.UpdateUserCredits)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
	}

	return router, nil
}

// authMiddleware selects the v1 auth strategy from AUTH_MODE: "jwt" for
// direct deployments, "gateway" behind the cloud gateway, "none" for
// self-hosted single-user setups.
func authMiddleware(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	switch cfg.AuthMode {
	case "jwt":
		return middleware.JWTAuth(db, cfg)
	case "gateway":
		return apimiddleware.GatewayAuth()
	default:
		return apimiddleware.NoAuth()
	}
}
