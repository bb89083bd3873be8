package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venuescout/internal/config"
	"venuescout/internal/handler"
	"venuescout/internal/repository"
	"venuescout/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.Printf("VenueScout travel recommendation service")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection (vector index + telemetry)
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	log.Println("Connected to PostgreSQL database")

	// Initialize OpenAI client
	var aiClient *service.OpenAIClient
	if cfg.OpenAI.Enabled {
		aiClient = service.NewOpenAIClient(&cfg.OpenAI)
		log.Printf("OpenAI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("   - Embedding model: %s (dim %d)", cfg.OpenAI.EmbeddingModel, cfg.OpenAI.EmbeddingDimensions)
	} else {
		log.Println("Warning: OpenAI is disabled - intent extraction and retrieval will not work")
		log.Println("   Set OPENAI_API_KEY environment variable to enable AI features")
	}

	// Initialize services
	retriever := service.NewRetriever(
		repo,
		aiClient,
		cfg.Retrieval.PatternThreshold,
		cfg.Retrieval.PhraseThreshold,
		cfg.Retrieval.TopK,
	)
	extractor := service.NewIntentExtractor(aiClient, retriever)
	recommender := service.NewRecommender(aiClient)
	scheduler := service.NewScheduler()

	// Freshness validation runs against an external endpoint; leave the
	// cache nil when no endpoint is configured.
	var freshness *service.FreshnessCache
	if cfg.Freshness.APIURL != "" {
		validator := service.NewHTTPFreshnessValidator(
			cfg.Freshness.APIURL,
			time.Duration(cfg.Freshness.Timeout)*time.Second,
		)
		freshness = service.NewFreshnessCache(validator, time.Duration(cfg.Freshness.TTLHours)*time.Hour)
		log.Printf("Freshness validator enabled: %s", cfg.Freshness.APIURL)
	}

	travelService := service.NewTravelService(
		extractor,
		retriever,
		recommender,
		aiClient,
		freshness,
		repo,
		repo,
	)

	log.Println("Services initialized")

	// Initialize handlers
	queryHandler := handler.NewQueryHandler(travelService)
	dayPlanHandler := handler.NewDayPlanHandler(scheduler)
	feedbackHandler := handler.NewFeedbackHandler(travelService)
	corpusHandler := handler.NewCorpusHandler(travelService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "venuescout",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/query", queryHandler.Answer)
		apiV1.POST("/dayplan", dayPlanHandler.Create)
		apiV1.POST("/feedback", feedbackHandler.Submit)
		apiV1.POST("/corpus/batch", corpusHandler.BatchUpsert)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	log.Println("Server stopped")
}
