package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rentdesk_backend/pkg/logger"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger assigns a request id, stores a request scoped zap logger and
// writes one line per request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		l := logger.Get().With(zap.String("request_id", requestID))
		c.Locals(logger.LocalsKey, l)
		c.SetUserContext(logger.WithContext(c.UserContext(), l))

		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the app error handler pick the status before logging it
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}

		logger.FromFiber(c).Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		)
		return err
	}
}
