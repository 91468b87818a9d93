package api

import (
	"github.com/gofiber/fiber/v2"
)

type CheckHandler struct{}

func NewCheckHandler() *CheckHandler {
	return &CheckHandler{}
}

// HandleRoot is the liveness probe mounted at /.
func (h CheckHandler) HandleRoot(c *fiber.Ctx) error {
	return c.SendString("Dialogue backend is running")
}

func (h CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}
