package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Rachitt19/BlogApp/internal/httputils"
)

func Recovery(log *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("panic recovered", "panic", r)
				_ = httputils.Error(c, fiber.StatusInternalServerError, "Server error")
			}
		}()
		return c.Next()
	}
}
