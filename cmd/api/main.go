package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidlink/internal/app"
	"github.com/KeremKalyoncu/vidlink/internal/config"
	"github.com/KeremKalyoncu/vidlink/internal/logger"
	"github.com/KeremKalyoncu/vidlink/internal/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	zapLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer zapLogger.Sync()

	container, err := app.NewContainer(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize application", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	container.Start(ctx)

	server := container.Router()

	go func() {
		zapLogger.Info("Starting API server", zap.String("address", cfg.Address()))
		if err := server.Listen(cfg.Address()); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	gs := shutdown.NewGracefulShutdown(zapLogger, cfg.API.ShutdownTimeout)
	gs.Register("http-server", server.ShutdownWithContext)
	gs.Register("container", container.Close)
	gs.Wait()
}
