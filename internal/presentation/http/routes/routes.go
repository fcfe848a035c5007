// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kladi/pulso-go/internal/application/container"
	"github.com/kladi/pulso-go/internal/presentation/http/handlers"
	"github.com/kladi/pulso-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	dashboardHandlers := handlers.NewDashboardHandlers(
		container.DashboardService,
		container.SnapshotService,
		container.CacheManager,
		container.Logger,
		container.PerfTracker,
	)
	adminHandlers := handlers.NewAdminHandlers(container.AdminService, container.Logger, container.PerfTracker)

	api := r.Group("/api/v1")
	{
		api.GET("/dashboard", dashboardHandlers.HandleDashboard)
		api.GET("/accounts", dashboardHandlers.HandleAccounts)
		api.GET("/accounts/test", dashboardHandlers.HandleTestAccounts)
		api.POST("/refresh", dashboardHandlers.HandleRefresh)
		api.GET("/health", dashboardHandlers.HandleHealth)

		admin := api.Group("/admin")
		{
			admin.POST("/flags", adminHandlers.HandleSetFlag)
			admin.POST("/notes", adminHandlers.HandleUpsertNote)
			admin.GET("/notes/:accountId", adminHandlers.HandleGetNote)
		}
	}

	return r
}
