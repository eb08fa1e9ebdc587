package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/akeren/landing-api/config"
	"github.com/akeren/landing-api/domain"
	"github.com/akeren/landing-api/internal/log"
)

type serverFlags struct {
	autoMigrate bool
	migrate     bool
}

func parseFlags(args []string) serverFlags {
	var flags serverFlags

	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "--auto-migrate", "-m":
			flags.autoMigrate = true
		case "--migrate":
			flags.migrate = true
		}
	}

	return flags
}

func main() {
	logger := log.NewLoggerWithJSONOutput()

	logger.Info("Landing API server initialized")

	flags := parseFlags(os.Args[1:])

	appConfig, err := config.LoadApplicationConfiguration(logger, flags.autoMigrate)
	if err != nil {
		logger.Error("Failed to load application configuration", "error", err.Error())
		os.Exit(1)
	}

	if flags.migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		err := config.RunMigrations(ctx, logger, appConfig.DB)
		cancel()
		if err != nil {
			logger.Error("Database migration failed", "error", err.Error())
			appConfig.Cleanup()
			os.Exit(1)
		}
	}

	domain.SetupCoreDomain(appConfig)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server...")
		if err := appConfig.RouterService.RunHTTPServer(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error("Server error", "error", err)
		appConfig.Cleanup()
		os.Exit(1)
	case <-quit:
		logger.Info("Shutdown signal received, shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := appConfig.RouterService.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		} else {
			logger.Info("HTTP server shut down gracefully")
		}
		appConfig.Cleanup()

		logger.Info("Graceful shutdown completed")
	}
}
