package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/P-Jays/crypto-telegram-bot/pkg/utils"
)

type Health struct {
	Version string
}

func InitRestHealth(app fiber.Router, version string) Health {
	handler := Health{Version: version}
	app.Get("/health", handler.GetStatus)
	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Service healthy",
		Results: fiber.Map{"version": h.Version},
	})
}
