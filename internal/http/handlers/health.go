package handlers

import (
	"github.com/gofiber/fiber/v2"

	"docconv/internal/infra/chrome"
)

// HandleRoot answers GET / for load balancers and the frontend.
func HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "OK",
		"message": "Smart Study Tool API is running",
	})
}

// ChromeStatser is implemented by *chrome.Renderer.
type ChromeStatser interface {
	Stats() (chrome.Stats, error)
}

// HandleChromeStats exposes the HTML renderer's tab pool (capacity / idle / in_use).
func HandleChromeStats(r ChromeStatser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := r.Stats()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Chrome pool init failed: "+err.Error())
		}
		return c.JSON(s)
	}
}
