package handlers

import (
	"github.com/coursedeck/coursedeck/database"
	"github.com/gofiber/fiber/v2"
)

// HandleCheckHealth reports liveness of the API and its database.
func HandleCheckHealth(store *database.GORMStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"error":  "database unreachable",
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
