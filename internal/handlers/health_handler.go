package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/crypto-identifier/internal/models"
	"alfredoptarigan/crypto-identifier/internal/services"
)

type HealthHandler struct {
	classifier services.ClassifierService
	registry   services.SessionRegistry
}

func NewHealthHandler(classifier services.ClassifierService, registry services.SessionRegistry) *HealthHandler {
	return &HealthHandler{
		classifier: classifier,
		registry:   registry,
	}
}

// HandleHealth handles GET /api/v1/health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	classifier := "up"
	if err := h.classifier.Ping(ctx); err != nil {
		classifier = "down"
	}

	return c.JSON(models.HealthResponse{
		Status:     "healthy",
		Classifier: classifier,
		Sessions:   h.registry.Count(),
	})
}
