package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type namedHandler struct {
	name string
	fn   func(ctx context.Context) error
}

// GracefulShutdown runs registered cleanup handlers once a stop signal arrives
type GracefulShutdown struct {
	logger   *zap.Logger
	timeout  time.Duration
	handlers []namedHandler
}

// NewGracefulShutdown creates a shutdown handler
func NewGracefulShutdown(logger *zap.Logger, timeout time.Duration) *GracefulShutdown {
	return &GracefulShutdown{
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a cleanup handler. Handlers run in registration order, so
// register the HTTP server first and the resources it uses after it.
func (gs *GracefulShutdown) Register(name string, handler func(ctx context.Context) error) {
	gs.handlers = append(gs.handlers, namedHandler{name: name, fn: handler})
}

// Wait blocks until SIGINT or SIGTERM, then runs the handlers
func (gs *GracefulShutdown) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	sig := <-quit
	gs.logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	gs.Run()
}

// Run executes every handler under a shared deadline. It returns the
// number of handlers that failed.
func (gs *GracefulShutdown) Run() int {
	ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
	defer cancel()

	failed := 0
	for _, h := range gs.handlers {
		gs.logger.Info("Executing cleanup handler", zap.String("handler", h.name))

		if err := h.fn(ctx); err != nil {
			failed++
			gs.logger.Error("Cleanup handler failed",
				zap.String("handler", h.name),
				zap.Error(err),
			)
		}
	}

	gs.logger.Info("Graceful shutdown completed", zap.Int("failed", failed))
	return failed
}
