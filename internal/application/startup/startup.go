// Package startup handles application initialization and lifecycle management
package startup

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/kladi/pulso-go/internal/application/container"
	"github.com/kladi/pulso-go/internal/infrastructure/persistence/database"
	"github.com/kladi/pulso-go/internal/presentation/http/server"
	"github.com/kladi/pulso-go/pkg/config"
)

// Initialize sets up and starts the complete application
func Initialize() error {
	setupLogging()

	displayStartupBanner()

	log.Println("1. Loading environment...")
	if err := godotenv.Load(); err != nil {
		log.Println("   No .env file found, using system environment")
	}

	log.Println("2. Building dependency container...")
	appContainer, err := container.NewContainer()
	if err != nil {
		return err
	}

	log.Println("3. Starting background workers...")
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	go runCacheCleanupWorker(cleanupCtx, appContainer)

	log.Println("4. Starting HTTP server...")
	srv := server.New(config.Port, appContainer)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	appContainer.Logger.Startup().Info("Application started",
		"port", config.Port,
		"upstream", config.UpstreamWebhookURL,
		"database", appContainer.Database.GetConnectionInfo())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		cancelCleanup()
		return err
	case sig := <-quit:
		log.Printf("Received signal %v, shutting down...", sig)
	}

	cancelCleanup()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		appContainer.Logger.Shutdown().Error("HTTP server shutdown failed", "error", err)
	}

	if err := database.Shutdown(); err != nil {
		appContainer.Logger.Shutdown().Error("Database shutdown failed", "error", err)
	}
	appContainer.Logger.Shutdown().Info("Shutdown complete")
	appContainer.Logger.Close()

	return nil
}

func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// runCacheCleanupWorker periodically evicts expired dashboard entries. The
// snapshot store is left alone so a stale snapshot survives as the
// upstream-failure fallback.
func runCacheCleanupWorker(ctx context.Context, appContainer *container.Container) {
	ticker := time.NewTicker(config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			appContainer.CacheManager.Cleanup()
			appContainer.PerfTracker.Cleanup()
			appContainer.Logger.Cache().Debug("Cache cleanup pass complete",
				"stats", appContainer.CacheManager.GetStats())
		}
	}
}

func displayStartupBanner() {
	log.Println("=========================================")
	log.Println("  pulso-go - subscription metrics engine")
	log.Println("=========================================")
}
