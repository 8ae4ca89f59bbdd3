package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/crypto-identifier/internal/config"
	"alfredoptarigan/crypto-identifier/internal/handlers"
	"alfredoptarigan/crypto-identifier/internal/services"
	"alfredoptarigan/crypto-identifier/internal/views"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 64 * 1024

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	classifierService := services.NewClassifierService(
		cfg.Classifier.APIBaseURL,
		cfg.PredictURL(),
		cfg.Classifier.RequestTimeout,
	)
	log.Printf("✅ Classifier endpoint: %s\n", cfg.PredictURL())

	registry := services.NewSessionRegistry(func() services.AnalysisSession {
		return services.NewAnalysisSession(classifierService, storageService, cfg.Session.SingleFlight)
	})

	renderer, err := views.NewRenderer()
	if err != nil {
		log.Fatalf("❌ Failed to initialize views: %v", err)
	}
	log.Println("✅ Services initialized successfully")

	// Initialize worker
	worker := services.NewWorker(
		registry,
		cfg.Worker.Concurrency,
		cfg.Session.TTL,
		cfg.Worker.SweepInterval,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Cryptographic Algorithm Identifier",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Classifier.RequestTimeout + 10*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + multipartOverhead,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.SetupRoutes(app, handlers.Dependencies{
		Registry:   registry,
		Storage:    storageService,
		Classifier: classifierService,
		Worker:     worker,
		Renderer:   renderer,
	})
	log.Println("✅ Handlers initialized")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		cancel()
		worker.Stop()
		registry.CloseAll()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 Open http://localhost%s in a browser\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
