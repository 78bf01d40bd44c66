package middleware

import (
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestID reuses a caller supplied X-Request-ID or generates one, and
// stores it in the request_id local.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: "request_id",
	})
}

// AccessLog logs one line per request once the handler chain, including
// the error handler, has run.
func AccessLog(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Render the error now so the logged status is the one sent.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Any("request_id", c.Locals("request_id")),
		}
		if id, ok := c.Locals("user_id").(string); ok && id != "" {
			fields = append(fields, zap.String("user_id", id))
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("Request", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("Request", fields...)
		default:
			log.Info("Request", fields...)
		}
		return nil
	}
}

// Recover turns a panic into a 500 response and logs it with the stack.
func Recover(log *zap.Logger) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			log.Error("Panic recovered",
				zap.Any("panic", e),
				zap.String("path", c.Path()),
				zap.Any("request_id", c.Locals("request_id")),
				zap.ByteString("stack", debug.Stack()),
			)
		},
	})
}
