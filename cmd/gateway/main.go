package main

import (
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"draftdeck/internal/auth"
	"draftdeck/internal/cache"
	"draftdeck/internal/capabilities"
	"draftdeck/internal/config"
	"draftdeck/internal/handler"
	"draftdeck/internal/middleware"
	"draftdeck/internal/repository/rest"
	"draftdeck/internal/service/importer"
	"draftdeck/internal/service/poll"
	"draftdeck/internal/service/session"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("gateway starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"backend", cfg.BackendBaseURL,
	)

	// Create JWT verifier against the backend's JWKS endpoint
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// REST client for the remote draft backend
	client := rest.NewClient(&rest.ClientConfig{
		BaseURL: cfg.BackendBaseURL,
		Logger:  logger,
	})
	draftRepo := rest.NewDraftRepository(client)
	chatRepo := rest.NewChatRepository(client)
	importRepo := rest.NewImportRepository(client)

	// Initialize capability registry
	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize capability registry: %v", err)
	}
	logger.Info("capability registry initialized")

	// Local snapshot cache
	snapshots, err := cache.Open(cfg.CacheDir, logger)
	if err != nil {
		log.Fatalf("Failed to open snapshot cache: %v", err)
	}
	defer snapshots.Close()

	// Generation poller and per-conversation sessions
	poller := poll.NewPoller(draftRepo, cfg.PollInterval, logger)
	sessions := session.NewManager(
		chatRepo,
		draftRepo,
		poller,
		snapshots,
		cfg.DefaultModel,
		cfg.DefaultProvider,
		logger,
	)
	defer sessions.Close()

	// Handlers
	conversationHandler := handler.NewConversationHandler(sessions, capabilityRegistry, logger)
	importHandler := handler.NewImportHandler(importer.New(importRepo, logger), logger)

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)

	mux.HandleFunc("GET /api/conversations/{id}/state", conversationHandler.GetState)
	mux.HandleFunc("POST /api/conversations/{id}/chat", conversationHandler.SendMessage)
	mux.HandleFunc("POST /api/conversations/{id}/versions/previous", conversationHandler.PreviousVersion)
	mux.HandleFunc("POST /api/conversations/{id}/versions/next", conversationHandler.NextVersion)
	mux.HandleFunc("PUT /api/conversations/{id}/diffs", conversationHandler.SetDiffs)
	mux.HandleFunc("POST /api/conversations/{id}/versions/{versionId}/revert", conversationHandler.RevertVersion)
	mux.HandleFunc("PATCH /api/conversations/{id}/draft", conversationHandler.UpdateDraft)
	mux.HandleFunc("POST /api/conversations/{id}/research-run", conversationHandler.LaunchResearchRun)
	mux.HandleFunc("POST /api/conversations/{id}/files", conversationHandler.StageFiles)
	mux.HandleFunc("DELETE /api/conversations/{id}/files/{storageKey}", conversationHandler.UnstageFile)
	mux.HandleFunc("PUT /api/conversations/{id}/model", conversationHandler.SelectModel)
	mux.HandleFunc("GET /api/conversations/{id}/models", conversationHandler.ListModels)

	mux.HandleFunc("POST /api/import", importHandler.Import)

	// Build middleware chain
	var handlerChain http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	handlerChain = middleware.AuthMiddleware(jwtVerifier)(handlerChain)
	handlerChain = middleware.Recovery(logger)(handlerChain)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	handlerChain = corsHandler.Handler(handlerChain)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlerChain,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("gateway listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start gateway: %v", err)
	}
}
