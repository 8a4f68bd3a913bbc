package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"repocast/internal/analysis"
	"repocast/internal/config"
	"repocast/internal/database"
	"repocast/internal/github"
	"repocast/internal/handler"
	"repocast/internal/repository"
	"repocast/internal/service"
)

// main is the single entry‑point for the REST API.
func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("Configuration loaded:")
	log.Printf("  - Database: %s", cfg.DBName)
	log.Printf("  - Analysis service: %s", cfg.AnalysisAPIURL)
	log.Printf("  - Index wait budget: %s", cfg.IndexMaxWait)

	// Connect to MongoDB (episode store)
	client, ctx, cancel, err := database.NewMongo(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancel()
	defer client.Disconnect(ctx)
	log.Printf("Connected to MongoDB")

	db := client.Database(cfg.DBName)
	episodeRepo := repository.NewEpisodeRepository(db)

	// External collaborators
	ghClient := github.NewClient(cfg.GitHubToken)
	analysisClient := analysis.NewClient(cfg.AnalysisAPIURL, cfg.AnalysisAPIKey)

	// Narrative clients: real Google clients when a project is configured,
	// local dummies otherwise (keeps the pipeline runnable offline).
	var llm service.TextGenerator = service.NewDummyLLM()
	var tts service.Synthesizer = service.NewDummySynthesizer()
	if cfg.ProjectID != "" {
		vertexLLM, err := service.NewVertexLLM(cfg.ProjectID, cfg.Location)
		if err != nil {
			log.Fatalf("Failed to initialize Vertex AI client: %v", err)
		}
		defer vertexLLM.Close()
		llm = vertexLLM

		speech, err := service.NewSpeechClient()
		if err != nil {
			log.Fatalf("Failed to initialize text-to-speech client: %v", err)
		}
		tts = speech
	} else {
		log.Printf("GCP_PROJECT_ID not set; using dummy generation clients")
	}

	// Pipeline services
	indexer := service.NewIndexer(analysisClient)
	gatherer := service.NewGatherer(analysisClient)
	episodeSvc := service.NewEpisodeService(ghClient, indexer, gatherer, cfg.IndexMaxWait)
	narrativeSvc := service.NewNarrativeService(episodeSvc, llm, tts, episodeRepo)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Add middleware
	app.Use(logger.New())

	// Register routes
	handler.RegisterRoutes(app, narrativeSvc, episodeRepo)

	// Add health check
	healthHandler := handler.NewHealthHandler(client)
	healthHandler.Register(app)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
