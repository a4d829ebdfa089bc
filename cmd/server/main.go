package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cam-server/internal/command"
	"cam-server/internal/config"
	"cam-server/internal/db"
	"cam-server/internal/events"
	"cam-server/internal/filter"
	"cam-server/internal/pipeline"
	"cam-server/internal/repository"
	"cam-server/internal/service"
	"cam-server/internal/tcp"
	"cam-server/pkg/ffmpeg"

	"github.com/joho/godotenv"
)

func main() {
	log.Println("Starting camera ingest server...")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Load configuration
	cfg := config.New()

	if err := ffmpeg.CheckInstallation(); err != nil {
		log.Printf("Warning: %v (video metadata probing disabled)", err)
	}

	// Create storage directories
	if err := os.MkdirAll(cfg.VideoDir, 0755); err != nil {
		log.Fatalf("Failed to create video directory: %v", err)
	}
	if err := os.MkdirAll(cfg.FrameDir, 0755); err != nil {
		log.Fatalf("Failed to create frame directory: %v", err)
	}

	// Connect to PostgreSQL
	dbConn, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbConn.Close()
	log.Println("Database connected successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbConn)
	cameraRepo := repository.NewCameraRepository(dbConn)
	videoRepo := repository.NewVideoRepository(dbConn)
	frameRepo := repository.NewFrameRepository(dbConn)

	// Event fan-out
	publisher, err := events.NewPublisher(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}
	defer publisher.Close()

	// Processing queue, pipeline and worker
	queue := pipeline.NewQueue()
	videoPipeline := pipeline.New(
		pipeline.NewExtractStage(cfg.FrameDir, cfg.JPEGQuality),
		pipeline.NewFilterStage(filter.Defaults(cfg.BrightnessBoost), frameRepo, cfg.JPEGQuality),
		pipeline.NewPersistStage(videoRepo),
	)
	worker := pipeline.NewWorker(queue, videoPipeline, videoRepo, publisher)

	// Services
	authService := service.NewAuthService(userRepo)
	videoService := service.NewVideoService(cfg, videoRepo, queue, publisher)

	// Command handlers and dispatcher
	framesHandler := command.NewFramesHandler(cameraRepo, videoService)
	dispatcher, err := command.NewDispatcher(
		command.NewLoginHandler(authService),
		command.NewRegisterHandler(authService),
		command.NewCameraHandler(cameraRepo),
		command.NewUserHandler(userRepo),
		framesHandler,
	)
	if err != nil {
		log.Fatalf("Failed to build command dispatcher: %v", err)
	}

	server := tcp.NewServer(cfg.ListenAddress, dispatcher, framesHandler, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	go func() {
		if err := server.Start(ctx); err != nil {
			log.Fatalf("TCP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop accepting connections, then drain the processing queue
	server.Stop()
	queue.Close()

	select {
	case <-workerDone:
	case <-time.After(cfg.ShutdownTimeout):
		log.Println("Shutdown timeout reached; abandoning in-flight processing")
	}

	log.Println("Server exited gracefully")
}
