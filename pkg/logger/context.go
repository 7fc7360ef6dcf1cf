package logger

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey contextKey = "logger"

	// LocalsKey is the fiber locals key holding the request scoped logger.
	LocalsKey = "logger"
)

func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return Get()
	}
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return Get()
}

func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromFiber returns the request logger set by the request logging middleware.
func FromFiber(c *fiber.Ctx) *zap.Logger {
	if l, ok := c.Locals(LocalsKey).(*zap.Logger); ok {
		return l
	}
	return Get()
}
