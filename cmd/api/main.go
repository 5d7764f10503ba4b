package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"gradekit/internal/adapter"
	"gradekit/internal/adapter/embedding"
	"gradekit/internal/cache"
	"gradekit/internal/config"
	"gradekit/internal/database"
	"gradekit/internal/domain"
	"gradekit/internal/evaluator"
	"gradekit/internal/handler"
	"gradekit/internal/logger"
	"gradekit/internal/match"
	"gradekit/internal/middleware"
	"gradekit/internal/repository"
	"gradekit/internal/scoring"
	"gradekit/internal/service"
	"gradekit/internal/similarity"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Redis backs both the embedding vector cache and the answer cache.
	// It is optional: a missing address just disables caching.
	var cacheAdapter domain.Cache
	if cfg.RedisConfigured() {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Warn("Failed to connect to Redis; caching disabled", zap.Error(err))
		} else {
			cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
			appLogger.Info("RedisCacheAdapter initialized")
		}
	}

	// Embedding backend is optional: without one the matcher runs on the
	// exact and token-overlap tiers only.
	var embeddingService domain.EmbeddingService
	switch cfg.Embedding.Source {
	case "ollama":
		appLogger.Info("Initializing Ollama Embedding Service",
			zap.String("server_url", cfg.Embedding.Ollama.ServerURL),
			zap.String("model", cfg.Embedding.Ollama.Model))
		embeddingService, err = embedding.NewOllamaEmbeddingService(cfg.Embedding.Ollama.ServerURL, cfg.Embedding.Ollama.Model)
		if err != nil {
			appLogger.Fatal("Failed to create Ollama Embedding Service", zap.Error(err))
		}
	case "openai":
		appLogger.Info("Initializing OpenAI Embedding Service", zap.String("model", cfg.Embedding.OpenAI.Model))
		embeddingService, err = embedding.NewOpenAIEmbeddingService(cfg.Embedding.OpenAI.APIKey, cfg.Embedding.OpenAI.Model, cacheAdapter)
		if err != nil {
			appLogger.Fatal("Failed to create OpenAI Embedding Service", zap.Error(err))
		}
	case "", "none":
		appLogger.Info("No embedding backend configured; semantic matching disabled")
	default:
		appLogger.Fatal("Unsupported embedding source", zap.String("source", cfg.Embedding.Source))
	}

	// Connect to database
	db, err := database.NewSQLXSqliteDB(cfg.Database.Path)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	questionRepository := repository.NewQuestionDatabaseAdapter(db)

	// Local grading engine
	scorer := similarity.NewScorer(embeddingService)
	thresholds := match.Thresholds{
		TokenOverlapMin:      cfg.Scoring.TokenOverlapMin,
		SemanticMin:          cfg.Scoring.SemanticMin,
		ForbiddenSemanticMin: cfg.Scoring.ForbiddenSemantic,
	}
	weights := scoring.Weights{
		Similarity:        cfg.Scoring.SimilarityWeight,
		Coverage:          cfg.Scoring.CoverageWeight,
		PartialCredit:     cfg.Scoring.PartialCredit,
		PenaltyPerConcept: cfg.Scoring.PenaltyPerConcept,
		PassThreshold:     cfg.Scoring.PassThreshold,
	}
	localEvaluator := evaluator.NewLocalEvaluator(scorer, match.NewMatcher(scorer, thresholds), weights)

	// Remote evaluator is preferred when an API key is present; a missing
	// key is not an error, the service just runs in local-only mode.
	var remoteEvaluator domain.Evaluator
	if cfg.RemoteConfigured() {
		gemini, err := evaluator.NewGeminiEvaluator(context.Background(),
			cfg.Remote.APIKey, cfg.Remote.Model, cfg.Remote.Timeout)
		if err != nil {
			appLogger.Warn("Failed to create remote evaluator; running local-only", zap.Error(err))
		} else {
			remoteEvaluator = gemini
			appLogger.Info("Remote evaluator initialized", zap.String("model", cfg.Remote.Model))
		}
	} else {
		appLogger.Info("No remote API key configured; grading locally")
	}

	// Answer cache needs both redis and an embedding backend.
	var answerCacheService service.AnswerCacheService
	if cacheAdapter != nil && embeddingService != nil {
		answerCacheService = service.NewAnswerCacheService(cacheAdapter, cfg.Embedding.SimilarityThreshold)
		appLogger.Info("AnswerCacheService initialized")
	}

	evaluationService := service.NewEvaluationService(questionRepository,
		remoteEvaluator, localEvaluator, embeddingService, answerCacheService)
	questionService := service.NewQuestionService(questionRepository)
	appLogger.Info("Evaluation service initialized",
		zap.String("strategy", string(evaluationService.Strategy())))

	questionHandler := handler.NewQuestionHandler(questionService)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "strategy": string(evaluationService.Strategy())})
	})

	apiGroup := app.Group("/api")
	apiGroup.Post("/questions", questionHandler.CreateQuestion)
	apiGroup.Get("/questions", questionHandler.ListQuestions)
	apiGroup.Get("/questions/:number", questionHandler.GetQuestion)
	apiGroup.Post("/questions/:number/evaluate", evaluationHandler.EvaluateAnswer)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
