package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/clipnest-go/api"
	"github.com/yourusername/clipnest-go/internal/app"
	"github.com/yourusername/clipnest-go/internal/domain"
	"github.com/yourusername/clipnest-go/internal/infrastructure"
	"github.com/yourusername/clipnest-go/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file (default: ./configs, $HOME/.clipnest, /etc/clipnest)")

func main() {
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.NewDefault().Fatal("Failed to load config", zap.String("path", *configPath), zap.Error(err))
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := runServer(config, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func runServer(config *domain.Config, log *zap.Logger) error {
	log.Info("Starting ClipNest server",
		zap.String("version", "1.0.0"),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("download_dir", config.Download.Dir))

	stager, err := app.NewStager(config.Download.Dir)
	if err != nil {
		return err
	}

	service := app.NewMediaService(
		newSources(config, log),
		config.RetryPolicies(),
		stager,
		app.NewCleanupCoordinator(log.Named("cleanup")),
		log.Named("media"),
	)

	router := api.SetupRouter(service, log)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.WithCORS(router, config.Server.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info("Shutting down server...")

	// In-flight downloads get the same grace period
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}

// newSources builds the platform integrations. The HTTP clients are created
// once here and shared by every request.
func newSources(config *domain.Config, log *zap.Logger) []domain.Source {
	instagramClient := infrastructure.NewHTTPClient(config.Instagram.Timeout)
	facebookClient := infrastructure.NewHTTPClient(config.Facebook.Timeout)

	return []domain.Source{
		infrastructure.NewInstagramSource(&config.Instagram, instagramClient, &config.Download,
			logger.ForPlatform(log, string(domain.PlatformInstagram))),
		infrastructure.NewFacebookSource(&config.Facebook, facebookClient, &config.Download,
			logger.ForPlatform(log, string(domain.PlatformFacebook))),
		infrastructure.NewYouTubeSource(&config.YouTube,
			logger.ForPlatform(log, string(domain.PlatformYouTube))),
	}
}
