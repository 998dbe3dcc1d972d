package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"devcompass/internal/config"
	"devcompass/internal/database"
	"devcompass/internal/github"
	"devcompass/internal/handler"
	"devcompass/internal/jobs"
	"devcompass/internal/middleware"
	"devcompass/internal/service"
	"devcompass/internal/store"
	"devcompass/internal/vector"
)

// main is the single entry point for the REST API.
func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("Configuration loaded:")
	log.Printf("  - SQLite path: %s", cfg.SQLitePath)
	log.Printf("  - MongoDB URI set: %t", cfg.MongoURI != "")
	log.Printf("  - GCP project set: %t", cfg.ProjectID != "")
	log.Printf("  - Ingest workers: %d", cfg.IngestWorkers)

	// Relational store (repositories, chat history)
	db, err := database.NewSQLite(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	repos := store.NewRepoStore(db)
	chats := store.NewChatStore(db)
	log.Printf("Connected to SQLite at %s", cfg.SQLitePath)

	// AI clients. Without a GCP project the server runs with placeholder
	// clients so the HTTP surface stays usable during local development.
	var (
		llm      service.LLM
		embedder service.Embedder
	)
	if cfg.ProjectID != "" {
		vertexLLM, err := service.NewVertexLLM(cfg.ProjectID, cfg.Location, "")
		if err != nil {
			log.Fatalf("Failed to initialize Vertex AI LLM: %v", err)
		}
		defer vertexLLM.Close()

		vertexEmbedder, err := service.NewVertexEmbedder(cfg.ProjectID, cfg.Location)
		if err != nil {
			log.Fatalf("Failed to initialize Vertex AI embedder: %v", err)
		}
		defer vertexEmbedder.Close()

		llm = vertexLLM
		embedder = vertexEmbedder
		log.Printf("Vertex AI clients initialized (project %s)", cfg.ProjectID)
	} else {
		llm = service.NewDummyLLM()
		embedder = service.NewDummyEmbedder()
		log.Printf("GCP_PROJECT_ID not set; using placeholder AI clients")
	}

	// Every generative call carries a deadline; a stalled backend call fails
	// instead of blocking an ingestion job or a request forever.
	llm = service.NewBoundedLLM(llm, cfg.GenerateTimeout)
	embedder = service.NewBoundedEmbedder(embedder, cfg.GenerateTimeout)

	// Vector store: Atlas vector search when configured, in-memory otherwise.
	var (
		vectors     vector.Store
		mongoClient *mongo.Client
	)
	if cfg.MongoURI != "" {
		client, mongoCtx, mongoCancel, err := database.NewMongo(cfg.MongoURI, cfg.MongoConnectTimeout)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoCancel()
		defer client.Disconnect(mongoCtx)

		mongoClient = client
		vectors = vector.NewMongoStore(client.Database(cfg.DBName), embedder)
		log.Printf("Connected to MongoDB database %s", cfg.DBName)
	} else {
		vectors = vector.NewMemoryStore(embedder)
		log.Printf("MONGODB_URI not set; using in-memory vector store")
	}

	// Initialize services
	gh := github.NewClient(cfg.GitHubToken, cfg.FetchTimeout)
	assistant := service.NewAssistant(repos, gh, vectors, llm, cfg.FileExtensions, cfg.IngestWorkers)
	ingestSvc := service.NewIngestService(assistant, jobs.NewTracker())
	diagramSvc := service.NewDiagramService(repos, vectors, llm)
	podcastSvc := service.NewPodcastService(repos, vectors, llm)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Add middleware
	app.Use(middleware.Logging())

	// Register routes
	handler.RegisterRoutes(app, ingestSvc, assistant, diagramSvc, podcastSvc, repos, chats)

	// Add health check
	healthHandler := handler.NewHealthHandler(db, mongoClient)
	healthHandler.Register(app)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
