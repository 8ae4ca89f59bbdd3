package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/crypto-identifier/internal/views"
)

type PageHandler struct {
	renderer *views.Renderer
}

func NewPageHandler(renderer *views.Renderer) *PageHandler {
	return &PageHandler{renderer: renderer}
}

// HandleAnalysisPage handles GET /
func (h *PageHandler) HandleAnalysisPage(c *fiber.Ctx) error {
	session := currentSession(c)

	var buf bytes.Buffer
	if err := h.renderer.RenderAnalysis(&buf, session.Theme.Current(), session.Analysis.ViewModel()); err != nil {
		return err
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// HandleHowItWorks handles GET /how-it-works
func (h *PageHandler) HandleHowItWorks(c *fiber.Ctx) error {
	session := currentSession(c)

	var buf bytes.Buffer
	if err := h.renderer.RenderHowItWorks(&buf, session.Theme.Current()); err != nil {
		return err
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
