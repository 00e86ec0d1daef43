package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRunExecutesHandlersInOrder(t *testing.T) {
	gs := NewGracefulShutdown(zap.NewNop(), time.Second)

	var order []string
	gs.Register("server", func(ctx context.Context) error {
		order = append(order, "server")
		return nil
	})
	gs.Register("cache", func(ctx context.Context) error {
		order = append(order, "cache")
		return errors.New("already closed")
	})
	gs.Register("sweeper", func(ctx context.Context) error {
		order = append(order, "sweeper")
		return nil
	})

	assert.Equal(t, 1, gs.Run())
	assert.Equal(t, []string{"server", "cache", "sweeper"}, order)
}

func TestRunAppliesDeadline(t *testing.T) {
	gs := NewGracefulShutdown(zap.NewNop(), 50*time.Millisecond)

	gs.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	assert.Equal(t, 1, gs.Run())
}
