package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/crypto-identifier/internal/services"
	"alfredoptarigan/crypto-identifier/internal/views"
)

type Dependencies struct {
	Registry   services.SessionRegistry
	Storage    services.StorageService
	Classifier services.ClassifierService
	Worker     services.Worker
	Renderer   *views.Renderer
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	pageHandler := NewPageHandler(deps.Renderer)
	analysisHandler := NewAnalysisHandler(deps.Storage, deps.Worker)
	sessionHandler := NewSessionHandler()
	themeHandler := NewThemeHandler()
	healthHandler := NewHealthHandler(deps.Classifier, deps.Registry)

	api := app.Group("/api/v1")
	api.Get("/health", healthHandler.HandleHealth)

	app.Use(SessionMiddleware(deps.Registry))

	// Pages
	app.Get("/", pageHandler.HandleAnalysisPage)
	app.Get("/how-it-works", pageHandler.HandleHowItWorks)
	app.Post("/analyze", analysisHandler.HandleAnalyze)
	app.Post("/theme", themeHandler.HandleToggle)

	// API endpoints
	api.Get("/session", sessionHandler.HandleGetSession)
	api.Post("/session/file", analysisHandler.HandleSelectFile)
	api.Post("/session/submit", analysisHandler.HandleSubmit)
	api.Post("/theme/toggle", themeHandler.HandleToggleAPI)
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
