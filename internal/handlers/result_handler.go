package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/crypto-identifier/internal/models"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// HandleGetSession handles GET /api/v1/session
func (h *SessionHandler) HandleGetSession(c *fiber.Ctx) error {
	session := currentSession(c)

	return c.JSON(models.SessionResponse{
		ID:       session.ID.String(),
		Theme:    session.Theme.Current(),
		Analysis: session.Analysis.ViewModel(),
	})
}
