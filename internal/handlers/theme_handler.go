package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/crypto-identifier/internal/models"
)

type ThemeHandler struct{}

func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// HandleToggle handles the form POST /theme and returns to the page it came from.
func (h *ThemeHandler) HandleToggle(c *fiber.Ctx) error {
	currentSession(c).Theme.Toggle()

	back := c.FormValue("back")
	if back != "/how-it-works" {
		back = "/"
	}
	return c.Redirect(back, fiber.StatusSeeOther)
}

// HandleToggleAPI handles POST /api/v1/theme/toggle
func (h *ThemeHandler) HandleToggleAPI(c *fiber.Ctx) error {
	theme := currentSession(c).Theme.Toggle()
	return c.JSON(models.ThemeResponse{Theme: theme})
}
