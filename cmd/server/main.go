package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/postcraft/configs"
	"github.com/maheshrc27/postcraft/internal/api/handlers"
	"github.com/maheshrc27/postcraft/internal/api/middleware"
	job "github.com/maheshrc27/postcraft/internal/jobs"
	"github.com/maheshrc27/postcraft/internal/providers"
	"github.com/maheshrc27/postcraft/internal/queue"
	"github.com/maheshrc27/postcraft/internal/repository"
	"github.com/maheshrc27/postcraft/internal/service"
	"github.com/maheshrc27/postcraft/internal/transfer"
	"github.com/maheshrc27/postcraft/internal/webhook"
	"github.com/robfig/cron"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.LoadConfig()
	setupLogger(cfg.LogLevel)
	if envErr != nil {
		slog.Warn("no .env file loaded", "error", envErr)
	}

	webhookOpts := []webhook.Option{
		webhook.WithTimeout(cfg.RequestTimeout),
		webhook.WithMaxUploadSize(cfg.UploadMaxSize),
	}
	if cfg.WebhookRateLimit > 0 {
		webhookOpts = append(webhookOpts, webhook.WithRateLimit(cfg.WebhookRateLimit, 1))
	}
	if cfg.N8N.URL() == "" {
		slog.Warn("n8n webhook is not configured, set N8N_WEBHOOK_URL or N8N_BASE_URL and N8N_WEBHOOK_ID")
	}
	webhookClient := webhook.New(cfg.N8N.URL(), webhookOpts...)

	var gemini *providers.Gemini
	if cfg.GeminiAPIKey != "" {
		gemini = providers.NewGemini(cfg.GeminiAPIKey, cfg.GeminiImageModel, cfg.GeminiAnalysisModel, cfg.RequestTimeout)
	}

	var analyzer service.ImageAnalyzer
	if gemini != nil {
		analyzer = gemini
	}

	var media service.MediaStore
	if cfg.R2.Enabled() {
		r2Service, err := service.NewR2Service(context.Background(), cfg.R2)
		if err != nil {
			log.Fatalf("Failed to configure media storage: %v", err)
		}
		media = r2Service
	}

	ideaRepo := repository.NewPostIdeaRepository()
	imageRepo := repository.NewGeneratedImageRepository()
	uploadRepo := repository.NewUploadedImageRepository()
	jobRepo := repository.NewModificationJobRepository()

	jobService := service.NewJobService(jobRepo, uploadRepo)
	ideaService := service.NewIdeaService(newIdeaGenerator(cfg, webhookClient), ideaRepo)
	imageService := service.NewImageService(newImageGenerator(cfg, webhookClient, gemini), imageRepo, ideaRepo, media)
	relayService := service.NewRelayService(cfg.N8N.Target, cfg.RequestTimeout)

	// queue
	worker := queue.NewWorker(uploadRepo, jobService, service.NewWebhookImageProcessor(webhookClient), media)

	var (
		dispatcher  service.ModifyDispatcher = queue.NewInlineDispatcher(worker)
		asynqClient *asynq.Client
		asynqServer *asynq.Server
	)
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		asynqClient = asynq.NewClient(redisConn)
		dispatcher = queue.NewAsynqDispatcher(asynqClient)

		asynqServer = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeModifyImage, worker.HandleModifyImageTask)

		go func() {
			slog.Info("starting the asynq server", "redis", cfg.RedisURI)
			if err := asynqServer.Run(mux); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	}

	uploadService := service.NewUploadService(uploadRepo, jobRepo, analyzer, dispatcher, cfg.UploadMaxSize)

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		// Room for base64-encoded uploads passing through the proxy.
		BodyLimit: int(cfg.UploadMaxSize)*2 + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := handlers.ErrorStatus(err)
			slog.Error("unhandled error", "path", c.Path(), "status", status, "error", err)
			return c.Status(status).JSON(transfer.MessageResponse{Success: false, Error: err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		// The proxy sets its own CORS headers.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/proxy")
		},
		AllowOrigins: cfg.FrontendURL,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	handlers.RegisterRoutes(app,
		handlers.NewIdeaHandler(ideaService),
		handlers.NewImageHandler(imageService, uploadService, jobService, cfg.UploadMaxSize),
		handlers.NewProxyHandler(relayService),
	)

	// cron jobs
	staleJobs := job.NewStaleJobSweeper(jobService, cfg.JobStaleAfter)

	c := cron.New()
	c.AddFunc("@every 1m", staleJobs.Sweep)
	c.Start()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("server is running", "port", cfg.Port, "ideas", cfg.IdeasProvider, "images", cfg.ImageProvider)

	gracefulShutdown(app, c, asynqServer, asynqClient)
}

func newIdeaGenerator(cfg *config.Config, wh *webhook.Client) service.IdeaGenerator {
	switch cfg.IdeasProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatal("IDEAS_PROVIDER=openai requires OPENAI_API_KEY")
		}
		return service.NewOpenAIIdeaGenerator(providers.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, "", cfg.RequestTimeout))
	case "n8n":
	default:
		slog.Warn("unknown ideas provider, using n8n", "provider", cfg.IdeasProvider)
	}
	return service.NewWebhookIdeaGenerator(wh)
}

func newImageGenerator(cfg *config.Config, wh *webhook.Client, gemini *providers.Gemini) service.ImageGenerator {
	switch cfg.ImageProvider {
	case "gemini":
		if gemini == nil {
			log.Fatal("IMAGE_PROVIDER=gemini requires GEMINI_API_KEY")
		}
		return service.NewGeminiImageGenerator(gemini)
	case "openrouter":
		if cfg.OpenRouterAPIKey == "" {
			log.Fatal("IMAGE_PROVIDER=openrouter requires OPENROUTER_API_KEY")
		}
		return service.NewOpenRouterImageGenerator(providers.NewOpenRouter(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, "", cfg.RequestTimeout))
	case "n8n":
	default:
		slog.Warn("unknown image provider, using n8n", "provider", cfg.ImageProvider)
	}
	return service.NewWebhookImageGenerator(wh)
}

func gracefulShutdown(app *fiber.App, c *cron.Cron, asynqServer *asynq.Server, asynqClient *asynq.Client) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("shutting down server")

	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	if asynqServer != nil {
		asynqServer.Shutdown()
	}
	if asynqClient != nil {
		if err := asynqClient.Close(); err != nil {
			slog.Error("failed to close asynq client", "error", err)
		}
	}
	slog.Info("server shutdown complete")
}
