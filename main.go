package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"message-service/internal/cache"
	"message-service/internal/config"
	"message-service/internal/db"
	"message-service/internal/handlers"
	"message-service/internal/logging"
	"message-service/internal/middleware"
	"message-service/internal/observability"
	"message-service/internal/rabbitmq"
	"message-service/internal/repositories"
	"message-service/internal/telemetry"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	shutdownTracer, err := observability.InitTracer(context.Background(), cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	database, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err), zap.String("driver", cfg.DBDriver))
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AuditExchange)
	defer publisher.Close()
	logger.Info("audit publisher ready",
		zap.String("mode", rabbitmq.PublisherMode(publisher)),
		zap.String("noop_reason", rabbitmq.PublisherNoopReason(publisher)),
	)
	emitter := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, cfg.ServiceName, cfg.Environment)

	messageRepo := repositories.NewMessageRepo(database, emitter)

	var directory repositories.DirectoryRepository = repositories.NewDirectoryRepo(database)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		directory = cache.NewDirectory(directory, cache.NewRedisStore(client), cfg.DirectoryTTL)
		logger.Info("directory cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	messageHandler := handlers.NewMessageHandler(messageRepo, directory)

	router := gin.New()
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(gin.Recovery())

	router.GET("/metrics", gin.WrapH(observability.MetricsHandler()))
	router.GET("/healthz", handlers.Health(database))

	authMiddleware := middleware.AuthMiddleware(directory)

	router.GET("/messages", authMiddleware, messageHandler.GetMessages)
	router.PUT("/messages", authMiddleware, messageHandler.SendMessage)
	router.DELETE("/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)

	handlers.RegisterDebugRoutes(router.Group("/", authMiddleware), emitter, cfg.DebugRoutes)

	logger.Info("message service listening", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
