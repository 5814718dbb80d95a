package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexline/internal/config"
	"lexline/internal/database"
	"lexline/internal/handlers"
	"lexline/internal/middleware"
	"lexline/internal/repository"
	"lexline/internal/router"
	"lexline/internal/services"
	"lexline/internal/websocket"
	"lexline/internal/worker"
)

func main() {
	log.Println("🚀 Starting LexLine Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	sessionRepo := repository.NewSessionRepo(pool)
	messageRepo := repository.NewMessageRepo(pool)
	knowledgeRepo := repository.NewKnowledgeRepo(pool)
	documentRepo := repository.NewDocumentRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	assistant, err := services.NewAssistant(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer assistant.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Services ────
	sessionAuth := middleware.NewSessionAuth(cfg.SessionSecret)
	referralService := services.NewReferralService(knowledgeRepo)
	advisor := services.NewAdvisor(sessionRepo, messageRepo, knowledgeRepo, assistant, referralService)
	extractor := services.NewTextExtractor()

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.Queue, redisClients.PubSub, sessionAuth, advisor)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start Document Analysis Workers ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		assistant,
		extractor,
		wsHub,
		documentRepo,
		jobRepo,
		messageRepo,
		3,
	)
	workerPool.Start()
	log.Println("✓ Worker pool started (3 goroutines)")

	// ──── Initialize Handlers ────
	sessionHandler := handlers.NewSessionHandler(sessionRepo, sessionAuth)
	chatHandler := handlers.NewChatHandler(advisor, messageRepo)
	documentHandler := handlers.NewDocumentHandler(documentRepo, jobRepo, redisClients.Queue, cfg.StoragePath)

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		sessionAuth,
		sessionHandler,
		chatHandler,
		documentHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ LexLine Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
