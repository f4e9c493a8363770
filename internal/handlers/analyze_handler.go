package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"alfredoptarigan/cv-analyzer/internal/models"
	"alfredoptarigan/cv-analyzer/internal/repositories"
	"alfredoptarigan/cv-analyzer/internal/services"
)

type AnalyzeHandler struct {
	pipeline     *services.Pipeline
	storage      services.StorageService
	pdfParser    services.PDFParserService
	docRepo      repositories.DocumentRepository
	analysisRepo repositories.AnalysisRepository
	resultWriter services.ResultWriter
	validate     *validator.Validate
	maxFileSize  int64
	timeout      time.Duration
	log          *zap.Logger
}

func NewAnalyzeHandler(
	pipeline *services.Pipeline,
	storage services.StorageService,
	pdfParser services.PDFParserService,
	docRepo repositories.DocumentRepository,
	analysisRepo repositories.AnalysisRepository,
	resultWriter services.ResultWriter,
	maxFileSize int64,
	timeout time.Duration,
	log *zap.Logger,
) *AnalyzeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalyzeHandler{
		pipeline:     pipeline,
		storage:      storage,
		pdfParser:    pdfParser,
		docRepo:      docRepo,
		analysisRepo: analysisRepo,
		resultWriter: resultWriter,
		validate:     validator.New(),
		maxFileSize:  maxFileSize,
		timeout:      timeout,
		log:          log,
	}
}

// prepare runs the tier-1 pre-flight: file presence, size, type,
// questionnaire shape, and a readability probe of the document. Nothing is
// streamed and no stage runs until all of it passes.
func (h *AnalyzeHandler) prepare(c *fiber.Ctx) (*models.AnalysisRequest, uuid.UUID, error) {
	var zero uuid.UUID

	cvFile, err := c.FormFile("cv")
	if err != nil {
		return nil, zero, fiber.NewError(fiber.StatusBadRequest, "A CV file is required. Upload it as the 'cv' form field.")
	}

	if cvFile.Size > h.maxFileSize {
		return nil, zero, fiber.NewError(fiber.StatusRequestEntityTooLarge, "The CV file is too large.")
	}

	questionnaireRaw := c.FormValue("questionnaire")
	if questionnaireRaw == "" {
		return nil, zero, fiber.NewError(fiber.StatusBadRequest, "A questionnaire is required. Send it as the 'questionnaire' form field.")
	}

	var questionnaire models.Questionnaire
	if err := json.Unmarshal([]byte(questionnaireRaw), &questionnaire); err != nil {
		return nil, zero, fiber.NewError(fiber.StatusBadRequest, "The questionnaire is not valid JSON.")
	}
	if err := h.validate.Struct(questionnaire); err != nil {
		return nil, zero, fiber.NewError(fiber.StatusBadRequest, "The questionnaire is missing required fields: current role, target role, years of experience, country and work preference.")
	}

	filename, filePath, err := h.storage.SaveFile(cvFile, "cv")
	if err != nil {
		if errors.Is(err, services.ErrInvalidFileType) {
			return nil, zero, fiber.NewError(fiber.StatusUnsupportedMediaType, "Only PDF files are supported.")
		}
		return nil, zero, fiber.NewError(fiber.StatusInternalServerError, "Failed to store the uploaded file.")
	}

	// Readability probe: reject scanned images before opening a stream.
	if _, err := h.pdfParser.ExtractContent(filePath); err != nil {
		h.storage.DeleteFile(filename)
		if errors.Is(err, services.ErrNoTextContent) {
			return nil, zero, fiber.NewError(fiber.StatusUnprocessableEntity, "We could not read any text from your file — it may be a scanned image. Please upload a text-based PDF.")
		}
		return nil, zero, fiber.NewError(fiber.StatusUnprocessableEntity, "We could not read your document. Please check the file and try again.")
	}

	// The companion document is optional and best-effort: a broken one is
	// ignored, never rejected.
	linkedInPath := ""
	if companion, err := c.FormFile("linkedInPdf"); err == nil && companion.Size <= h.maxFileSize {
		if _, path, err := h.storage.SaveFile(companion, "linkedin"); err == nil {
			linkedInPath = path
		} else {
			h.log.Warn("companion upload skipped", zap.Error(err))
		}
	}

	doc := models.Document{
		ID:               uuid.New(),
		Filename:         filename,
		OriginalFileName: cvFile.Filename,
		FileType:         "cv",
		FilePath:         filePath,
		FileSize:         cvFile.Size,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := h.docRepo.Create(&doc); err != nil {
		h.storage.DeleteFile(filename)
		return nil, zero, fiber.NewError(fiber.StatusInternalServerError, "Failed to record the uploaded file.")
	}

	analysis := models.Analysis{
		ID:           uuid.New(),
		CVDocumentID: doc.ID,
		CurrentRole:  questionnaire.CurrentRole,
		TargetRole:   questionnaire.TargetRole,
		Status:       models.StatusProcessing,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := h.analysisRepo.Create(&analysis); err != nil {
		return nil, zero, fiber.NewError(fiber.StatusInternalServerError, "Failed to create the analysis record.")
	}

	return &models.AnalysisRequest{
		CVPath:        filePath,
		LinkedInPath:  linkedInPath,
		CVFileSize:    cvFile.Size,
		Questionnaire: questionnaire,
	}, analysis.ID, nil
}

// HandleAnalyzeStream handles POST /analyze/stream. The response is a
// newline-delimited stream of progress events, one JSON object per line,
// each flushed as soon as the pipeline emits it.
func (h *AnalyzeHandler) HandleAnalyzeStream(c *fiber.Ctx) error {
	req, analysisID, err := h.prepare(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		start := time.Now()
		events := h.pipeline.Run(ctx, *req)

		var final *models.AnalysisResult
		var errMsg string
		clientGone := false

		for ev := range events {
			switch ev.Step {
			case models.StepComplete:
				if result, ok := ev.Data.(models.AnalysisResult); ok {
					final = &result
				}
			case models.StepError:
				errMsg = ev.Message
			}

			if clientGone {
				// Keep draining so the producer can run to its terminal
				// state; the cancelled context stops further AI work.
				continue
			}

			payload, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("failed to encode progress event", zap.Error(err))
				continue
			}

			w.Write(payload)   //nolint:errcheck
			w.WriteByte('\n')  //nolint:errcheck
			if err := w.Flush(); err != nil {
				clientGone = true
				cancel()
			}
		}

		h.enqueueOutcome(analysisID, final, errMsg, time.Since(start))
	}))

	return nil
}

// HandleAnalyze handles POST /analyze: the same pipeline as the streaming
// variant, exposed as one blocking call returning the full result.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	req, analysisID, err := h.prepare(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	start := time.Now()

	var final *models.AnalysisResult
	var errMsg string
	for ev := range h.pipeline.Run(ctx, *req) {
		switch ev.Step {
		case models.StepComplete:
			if result, ok := ev.Data.(models.AnalysisResult); ok {
				final = &result
			}
		case models.StepError:
			errMsg = ev.Message
		}
	}

	h.enqueueOutcome(analysisID, final, errMsg, time.Since(start))

	if final != nil {
		return c.JSON(fiber.Map{
			"analysis_id": analysisID.String(),
			"result":      final,
		})
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fiber.NewError(fiber.StatusGatewayTimeout, "The analysis took too long and was stopped. Please try again.")
	}
	if errMsg == "" {
		errMsg = "The analysis failed unexpectedly. Please try again."
	}
	return fiber.NewError(fiber.StatusInternalServerError, errMsg)
}

func (h *AnalyzeHandler) enqueueOutcome(analysisID uuid.UUID, final *models.AnalysisResult, errMsg string, duration time.Duration) {
	job := services.PersistJob{
		AnalysisID: analysisID,
		Result:     final,
		Duration:   duration,
	}
	if final == nil {
		if errMsg == "" {
			errMsg = "analysis did not complete"
		}
		job.ErrMessage = errMsg
	}
	h.resultWriter.Enqueue(job)
}
