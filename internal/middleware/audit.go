package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/miniwallet/internal/wallet"
)

// Audit emits one structured log record per request.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the app error handler writes the status after this returns
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if requestID := RequestIDFrom(c); requestID != "" {
			attrs = append(attrs, slog.String("request_id", requestID))
		}
		if walletID, _ := c.Locals(wallet.LocalsWalletID).(string); walletID != "" {
			attrs = append(attrs, slog.String("wallet_id", walletID))
		}

		switch {
		case err != nil && status >= fiber.StatusInternalServerError:
			attrs = append(attrs, slog.Any("error", err))
			logger.ErrorContext(c.UserContext(), "request completed", attrs...)
		case status >= fiber.StatusBadRequest:
			logger.WarnContext(c.UserContext(), "request completed", attrs...)
		default:
			logger.InfoContext(c.UserContext(), "request completed", attrs...)
		}
		return err
	}
}
