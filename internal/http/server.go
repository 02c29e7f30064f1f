// Package http serves the Telegram webhook when the bot runs in
// webhook mode instead of long polling.
package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/postforge/bot/internal/telegram"
)

const ctxRequestID = "request_id"

// UpdateHandler receives every decoded webhook update.
type UpdateHandler func(ctx context.Context, upd telegram.Update)

// NewApp builds the webhook application. The bot token doubles as the
// webhook path secret: Telegram is the only party that knows it, so a
// matching path authenticates the caller.
func NewApp(token string, log *zap.Logger, handler UpdateHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())
	app.Use(loggerMiddleware(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/telegram/webhook/:token", func(c *fiber.Ctx) error {
		if c.Params("token") != token {
			return c.SendStatus(fiber.StatusNotFound)
		}

		var upd telegram.Update
		if err := c.BodyParser(&upd); err != nil {
			log.Warn("undecodable webhook payload", zap.Error(err))
			return c.SendStatus(fiber.StatusBadRequest)
		}

		handler(c.UserContext(), upd)
		return c.SendStatus(fiber.StatusOK)
	})

	return app
}

func requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals(ctxRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

func loggerMiddleware(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		reqID, _ := c.Locals(ctxRequestID).(string)
		log.Info("request",
			zap.String("request_id", reqID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)

		return err
	}
}
