package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/plantdisease-api/internal/app"
	"github.com/Brownie44l1/plantdisease-api/internal/config"
	"github.com/Brownie44l1/plantdisease-api/internal/handlers"
	"github.com/Brownie44l1/plantdisease-api/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.json", "path to JSON config file")
	flag.Parse()

	// If running from cmd/server, resolve relative paths from the project root
	if execPath, err := os.Getwd(); err == nil && filepath.Base(execPath) == "server" {
		_ = os.Chdir(filepath.Join(execPath, "../.."))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewLogger(level)
	slog.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	handler := handlers.NewHandler(a.Pipeline, a.Metadata.InputShape, cfg.MaxUploadBytes, logger)
	router := handlers.NewRouter(handler, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting",
			"port", cfg.Port,
			"model", cfg.ModelPath,
			"model_ready", a.Pipeline.Ready(),
			"classes", a.Metadata.Classes,
			"resampler", cfg.Resampler)
		logger.Info("endpoints",
			"health", "GET /health",
			"predict", "POST /predict",
			"predict_image", "POST /predict/image")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
