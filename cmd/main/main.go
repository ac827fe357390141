package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/supchaser/pdftoxl/internal/app/delivery"
	"github.com/supchaser/pdftoxl/internal/app/repository"
	"github.com/supchaser/pdftoxl/internal/app/usecase"
	"github.com/supchaser/pdftoxl/internal/config"
	"github.com/supchaser/pdftoxl/internal/middleware"
	"github.com/supchaser/pdftoxl/internal/utils/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("error initializing config: %v\n", err)
		os.Exit(1)
	}

	err = logger.Init(cfg.LogMode)
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("configuration loaded successfully")
	logger.Debug("debug mode enabled",
		zap.String("log_mode", cfg.LogMode),
		zap.String("service_url", cfg.ServiceURL),
		zap.Int("max_attempts", cfg.MaxAttempts),
	)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Error("failed to create storage directory", zap.Error(err))
		os.Exit(1)
	}

	batchRepo := repository.CreateBatchRepository()
	extractionRepo := repository.CreateExtractionRepository(cfg.ServiceURL, &http.Client{Timeout: cfg.RequestTimeout})
	storage := repository.CreateFileStorage(cfg.OutputDir)
	batchUsecase := usecase.CreateBatchUsecase(batchRepo, extractionRepo, storage, usecase.OptionsFromConfig(cfg))
	batchDelivery := delivery.CreateBatchDelivery(batchUsecase)

	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/health", batchDelivery.Health).Methods("GET")
	apiRouter.HandleFunc("/status", batchDelivery.GetStatus).Methods("GET")
	apiRouter.HandleFunc("/results/{name}", batchDelivery.DownloadResult).Methods("GET")

	batchRouter := apiRouter.PathPrefix("/batches").Subrouter()
	batchRouter.HandleFunc("", batchDelivery.CreateBatch).Methods("POST")
	batchRouter.HandleFunc("", batchDelivery.GetAllBatches).Methods("GET")
	batchRouter.HandleFunc("/{id}", batchDelivery.GetBatch).Methods("GET")
	batchRouter.HandleFunc("/{id}", batchDelivery.CancelBatch).Methods("DELETE")

	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.PanicMiddleware)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("starting HTTP server",
			zap.String("address", server.Addr),
			zap.Any("config", cfg),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("failed to start server", zap.Error(err))
		os.Exit(1)
	case sig := <-quit:
		logger.Info("server is shutting down",
			zap.String("signal", sig.String()),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
			os.Exit(1)
		}

		if err := batchUsecase.Shutdown(ctx); err != nil {
			logger.Error("batch shutdown error", zap.Error(err))
			os.Exit(1)
		}

		logger.Info("server stopped")
	}
}
