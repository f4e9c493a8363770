package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/cv-analyzer/internal/config"
	"alfredoptarigan/cv-analyzer/internal/handlers"
	"alfredoptarigan/cv-analyzer/internal/logger"
	"alfredoptarigan/cv-analyzer/internal/repositories"
	"alfredoptarigan/cv-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	// Initialize repositories
	docRepo := repositories.NewDocumentRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("failed to create upload directory", zap.Error(err))
	}

	pdfParser := services.NewPDFParserService()

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatal("failed to initialize Gemini AI", zap.Error(err))
	}
	log.Info("Gemini AI initialized", zap.String("model", cfg.Gemini.Model))

	// Market-context retrieval is an enhancement: a missing qdrant only
	// costs prompt context, not the service.
	var ragService services.RAGService
	rag, err := services.NewRAGService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		geminiService,
		log,
	)
	if err != nil {
		log.Warn("qdrant unavailable, market context disabled", zap.Error(err))
	} else if err := rag.InitCollection(); err != nil {
		log.Warn("qdrant collection init failed, market context disabled", zap.Error(err))
	} else {
		ragService = rag
		log.Info("qdrant initialized", zap.String("collection", cfg.Qdrant.Collection))
	}

	analyzer := services.NewAnalyzer(geminiService, log)
	pipeline := services.NewPipeline(analyzer, pdfParser, ragService, cfg.Analysis.DefaultLanguage, log)

	resultWriter := services.NewResultWriter(analysisRepo, cfg.Worker.Concurrency, cfg.Worker.QueueSize, log)
	resultWriter.Start()

	// Initialize handlers
	analyzeHandler := handlers.NewAnalyzeHandler(
		pipeline,
		storageService,
		pdfParser,
		docRepo,
		analysisRepo,
		resultWriter,
		cfg.Storage.MaxFileSize,
		cfg.Analysis.PipelineTimeout,
		log,
	)
	resultHandler := handlers.NewResultHandler(analysisRepo)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CV Career Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Analysis.PipelineTimeout + 30*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 2,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlog.New(fiberlog.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// The analysis endpoints are the expensive ones; only they are rate
	// limited, keyed by client IP.
	analysisLimiter := limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many analysis requests. Please wait a moment and try again.",
			})
		},
	})

	api.Post("/analyze", analysisLimiter, analyzeHandler.HandleAnalyze)
	api.Post("/analyze/stream", analysisLimiter, analyzeHandler.HandleAnalyzeStream)
	api.Get("/analysis/:id", resultHandler.HandleGetResult)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Career Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/analyze",
				"POST /api/v1/analyze/stream",
				"GET /api/v1/analysis/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
		resultWriter.Stop()
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
