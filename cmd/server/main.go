package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/downlyapp/downly/api"
	"github.com/downlyapp/downly/api/handlers"
	"github.com/downlyapp/downly/internal/app"
	"github.com/downlyapp/downly/internal/infrastructure"
	"github.com/downlyapp/downly/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file (default: search ./configs, ~/.downly)")

func main() {
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
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

	log.Info("Starting Downly server",
		zap.String("version", "1.0.0"),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("download_dir", config.Download.Dir))

	if err := os.MkdirAll(config.Download.Dir, 0755); err != nil {
		log.Fatal("Failed to create download directory", zap.Error(err))
	}
	if err := os.MkdirAll(filepath.Dir(config.Download.DatabasePath), 0755); err != nil {
		log.Fatal("Failed to create database directory", zap.Error(err))
	}

	repo, err := infrastructure.NewSQLiteJobRepository(config.Download.DatabasePath)
	if err != nil {
		log.Fatal("Failed to open job history database", zap.Error(err))
	}
	defer repo.Close()

	resolver := infrastructure.NewExecToolResolver(&config.Tools)
	parser := infrastructure.NewProgressParser(log)
	supervisor := infrastructure.NewProcessSupervisor(parser, config.Download.KillGrace, log)
	fetcher := infrastructure.NewYTDLPFetcher(supervisor, log)
	notifier := infrastructure.NewNotificationService(&config.Notification, log)

	orchestrator := app.NewOrchestrator(fetcher, resolver, repo, notifier, log)
	hub := handlers.NewProgressHub(log)

	router := api.SetupRouter(orchestrator, repo, hub, config.Download.Dir, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	// Stop the in-flight download first so yt-dlp gets its termination
	// grace before the HTTP listener goes away.
	if orchestrator.IsRunning() {
		if err := orchestrator.Cancel(""); err != nil {
			log.Error("Failed to cancel running download", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
