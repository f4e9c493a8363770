package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-analyzer/internal/models"
	"alfredoptarigan/cv-analyzer/internal/repositories"
)

type ResultHandler struct {
	analysisRepo repositories.AnalysisRepository
}

func NewResultHandler(analysisRepo repositories.AnalysisRepository) *ResultHandler {
	return &ResultHandler{
		analysisRepo: analysisRepo,
	}
}

// HandleGetResult handles GET /analysis/:id, a re-fetch of a persisted
// analysis without re-running the pipeline.
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	idParam := c.Params("id")
	analysisID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid analysis ID format",
		})
	}

	analysis, err := h.analysisRepo.FindByID(analysisID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Analysis not found",
		})
	}

	response := fiber.Map{
		"id":     analysis.ID.String(),
		"status": string(analysis.Status),
	}

	if analysis.Status == models.StatusCompleted && analysis.ResultJSON != nil {
		var result models.AnalysisResult
		if err := json.Unmarshal([]byte(*analysis.ResultJSON), &result); err == nil {
			response["result"] = result
		}
	}

	if analysis.Status == models.StatusFailed && analysis.ErrorMessage != nil {
		response["error_message"] = *analysis.ErrorMessage
	}

	return c.JSON(response)
}
