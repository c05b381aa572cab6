package handlers

import (
	"carrent/internal/docs"

	"github.com/gofiber/fiber/v2"
)

// RegisterDocsRoutes serves the Swagger document at /documentation.json.
func RegisterDocsRoutes(router fiber.Router) {
	router.Get("/documentation.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(docs.Swagger)
	})
}
