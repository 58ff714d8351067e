package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/proqure/backend/internal/analysis"
	"github.com/proqure/backend/internal/api/handlers"
	"github.com/proqure/backend/internal/cache/redis"
	"github.com/proqure/backend/internal/chat"
	"github.com/proqure/backend/internal/dashboard"
	"github.com/proqure/backend/internal/llm"
	"github.com/proqure/backend/internal/metrics"
	"github.com/proqure/backend/internal/middleware/auth"
	"github.com/proqure/backend/internal/middleware/ratelimit"
	"github.com/proqure/backend/internal/middleware/security"
	"github.com/proqure/backend/internal/middleware/validation"
	"github.com/proqure/backend/internal/storage/sqlite"
	"github.com/proqure/backend/pkg/config"
	appLogger "github.com/proqure/backend/pkg/logger"
)

func main() {
	// Optional .env for local development; real deployments use the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting ProQure API server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var dashboardCache dashboard.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		dashboardCache = redisClient
	}

	// The API credential is deliberately not checked here: a missing key
	// is a configuration error surfaced at invocation time.
	llmClient := llm.NewClient(
		cfg.LLM.BaseURL,
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	analyzer := analysis.NewService(llmClient, sqliteClient)
	dashboardService := dashboard.NewService(
		sqliteClient,
		dashboardCache,
		time.Duration(cfg.Redis.DashboardTTLSec)*time.Second,
	)
	chatService := chat.NewService(
		analyzer,
		dashboardService,
		time.Duration(cfg.Chat.SessionTTLMin)*time.Minute,
		time.Duration(cfg.Chat.CleanupIntervalMin)*time.Minute,
		cfg.Chat.MaxMessageLength,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(validation.Middleware(validation.Config{
		MaxBodySize: cfg.Server.BodyLimit,
	}))

	evalLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 10,
		Logger:               appLogger.GetLogger(),
	})
	defer evalLimiter.Stop()

	analyzeHandler := handlers.NewAnalyzeHandler(analyzer, dashboardService)
	reportHandler := handlers.NewReportHandler(sqliteClient, dashboardService)
	chatHandler := handlers.NewChatHandler(chatService)
	wsHandler := handlers.NewWebSocketHandler(chatService)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})
	api.Get("/ready", func(c *fiber.Ctx) error {
		if err := sqliteClient.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
			})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})
	api.Get("/metrics", metrics.MetricsHandler())

	protected := api.Group("", auth.Middleware())

	protected.Post("/analyze", evalLimiter.Middleware(), analyzeHandler.HandleAnalyze)

	protected.Get("/reports", reportHandler.GetAllReports)
	protected.Get("/reports/suppliers/list", reportHandler.GetSuppliers)
	protected.Get("/reports/:id", reportHandler.GetReportByID)
	protected.Get("/dashboard", reportHandler.GetDashboard)

	protected.Post("/chat/sessions", chatHandler.StartSession)
	protected.Get("/chat/sessions/:id", chatHandler.GetSession)
	protected.Post("/chat/sessions/:id/messages", evalLimiter.Middleware(), chatHandler.SendMessage)

	app.Use("/ws/chat", auth.Middleware(), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
