package httputils

import "github.com/gofiber/fiber/v2"

// OK writes the uniform success envelope, merging payload keys in.
func OK(c *fiber.Ctx, status int, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// Error writes the uniform failure envelope.
func Error(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": msg})
}
