package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/crypto-identifier/internal/models"
	"alfredoptarigan/crypto-identifier/internal/services"
)

type AnalysisHandler struct {
	storageService services.StorageService
	worker         services.Worker
}

func NewAnalysisHandler(
	storageService services.StorageService,
	worker services.Worker,
) *AnalysisHandler {
	return &AnalysisHandler{
		storageService: storageService,
		worker:         worker,
	}
}

// HandleAnalyze handles the form POST /analyze: select the attached file, if
// any, and hand a new submission to the worker.
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	session := currentSession(c)

	if _, err := h.selectUpload(c, session); err != nil {
		return err
	}

	if sub, ok := session.Analysis.Begin(); ok {
		job := services.SubmissionJob{
			SessionID:  session.ID,
			Session:    session.Analysis,
			Submission: sub,
		}
		if err := h.worker.EnqueueJob(job); err != nil {
			session.Analysis.Abort(sub, err)
		}
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleSelectFile handles POST /api/v1/session/file
func (h *AnalysisHandler) HandleSelectFile(c *fiber.Ctx) error {
	session := currentSession(c)

	file, err := h.selectUpload(c, session)
	if err != nil {
		return err
	}
	if file == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		ID:       file.ID.String(),
		FileName: file.Name,
		Size:     file.Size,
	})
}

// HandleSubmit handles POST /api/v1/session/submit. It blocks until the
// submission settles and returns the resulting view model.
func (h *AnalysisHandler) HandleSubmit(c *fiber.Ctx) error {
	session := currentSession(c)

	if _, err := h.selectUpload(c, session); err != nil {
		return err
	}

	vm := session.Analysis.Submit(c.UserContext())

	return c.JSON(models.SessionResponse{
		ID:       session.ID.String(),
		Theme:    session.Theme.Current(),
		Analysis: vm,
	})
}

// selectUpload stores the optional "file" part and selects it. It returns
// nil without error when the request carries no file.
func (h *AnalysisHandler) selectUpload(c *fiber.Ctx, session *services.BrowserSession) (*models.CiphertextFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	files, exists := form.File["file"]
	if !exists || len(files) == 0 {
		return nil, nil
	}

	file, err := h.storageService.SaveUpload(files[0])
	switch {
	case errors.Is(err, services.ErrEmptyFile):
		return nil, fiber.NewError(fiber.StatusBadRequest, "Empty file")
	case errors.Is(err, services.ErrFileTooLarge):
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
	case err != nil:
		log.Printf("❌ Failed to store upload: %v\n", err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
	}

	session.Analysis.SelectFile(file)
	log.Printf("📎 Session %s selected %s (%d bytes)\n", session.ID, file.Name, file.Size)
	return file, nil
}
