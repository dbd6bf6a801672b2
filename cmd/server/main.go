// Package main Deck Server
//
//	@title			Deck Server API
//	@version		1.0
//	@description	Генерация презентаций: описания слайдов, выбор макетов, содержимое, экспорт.
//
//	@BasePath	/api/v1/ppt
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"deck-server/internal/api"
	"deck-server/internal/assets"
	"deck-server/internal/coercer"
	"deck-server/internal/config"
	"deck-server/internal/content"
	"deck-server/internal/database"
	"deck-server/internal/export"
	"deck-server/internal/jobs"
	"deck-server/internal/llm"
	"deck-server/internal/outline"
	"deck-server/internal/pipeline"
	"deck-server/internal/repository"
	"deck-server/internal/storage"
	"deck-server/internal/structure"
	"deck-server/internal/templates"
	"deck-server/internal/webhook"
	pgdb "deck-server/pkg/database"
	"deck-server/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	zapLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize zap logger")
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)
	initZerolog(cfg)

	zapLogger.Info("Starting deck-server", zap.String("env", cfg.Env), zap.String("port", cfg.Server.Port))

	ctx := log.Logger.WithContext(context.Background())

	// --- Database ---
	zapLogger.Info("Connecting to database", zap.String("dsn", cfg.Database.MaskedDSN()))
	pool, err := pgdb.Connect(ctx, pgdb.PoolConfig{
		DSN:         cfg.Database.DSN(),
		MaxConns:    cfg.Database.MaxConns,
		MaxConnIdle: cfg.Database.MaxConnIdle,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		zapLogger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	presentationRepo := repository.NewPgPresentationRepository(pool, zapLogger)
	slideRepo := repository.NewPgSlideRepository(pool, zapLogger)
	webhookRepo := repository.NewPgWebhookRepository(pool, zapLogger)

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		zapLogger.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	pingCancel()
	defer func() { _ = redisClient.Close() }()
	zapLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// --- RabbitMQ (опционально) ---
	var publisher webhook.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer func() { _ = conn.Close() }()
		rmq, err := webhook.NewRabbitMQPublisher(conn, cfg.RabbitMQ.EventsExchange, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to create RabbitMQ publisher", zap.Error(err))
		}
		defer func() { _ = rmq.Close() }()
		publisher = rmq
		zapLogger.Info("Generation events are published to RabbitMQ", zap.String("exchange", cfg.RabbitMQ.EventsExchange))
	}

	// --- LLM и этапы конвейера ---
	provider, err := llm.NewProvider(cfg.AI, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create LLM provider", zap.Error(err))
	}
	jsonCoercer := coercer.New(zapLogger)

	catalog, err := templates.Load(cfg.Templates.CatalogPath)
	if err != nil {
		zapLogger.Fatal("Failed to load template catalog", zap.String("path", cfg.Templates.CatalogPath), zap.Error(err))
	}

	imageStore, err := storage.NewLocalStore(cfg.Images.SavePath, cfg.Images.PublicBaseURL)
	if err != nil {
		zapLogger.Fatal("Failed to prepare image storage", zap.Error(err))
	}
	var images assets.ImageProvider
	if cfg.Images.BaseURL != "" {
		images = assets.NewHTTPImageProvider(assets.HTTPImageProviderConfig{
			BaseURL:       cfg.Images.BaseURL,
			Timeout:       cfg.Images.Timeout,
			RatePerSecond: cfg.Images.RatePerSecond,
			Burst:         cfg.Images.Burst,
		}, zapLogger)
	} else {
		zapLogger.Warn("IMAGE_PROVIDER_URL is not set, slides will use placeholder images")
	}
	resolver := assets.NewResolver(images, imageStore, assets.NewIconCatalog("/static/icons"), cfg.Images.StyleSuffix, zapLogger)

	exportStore, err := storage.NewLocalStore(cfg.Export.OutputDir, cfg.Export.PublicBaseURL)
	if err != nil {
		zapLogger.Fatal("Failed to prepare export storage", zap.Error(err))
	}
	var pptx export.Renderer
	if cfg.Export.RendererURL != "" {
		pptx = export.NewPPTXRenderer(cfg.Export.RendererURL, cfg.Export.Timeout, zapLogger)
	} else {
		zapLogger.Warn("EXPORT_PPTX_RENDERER_URL is not set, only PDF export is available")
	}
	exporter := export.NewService(export.PDFRenderer{}, pptx, exportStore, zapLogger)

	notifier := webhook.NewNotifier(webhookRepo, publisher, cfg.Webhook.Timeout, zapLogger)

	service := pipeline.NewService(pipeline.Deps{
		Templates: catalog,
		Outlines:  outline.NewGenerator(provider, jsonCoercer, zapLogger),
		Structure: structure.NewAssigner(provider, jsonCoercer, rand.New(rand.NewSource(time.Now().UnixNano())), zapLogger),
		Orchestrator: pipeline.NewOrchestrator(
			content.NewGenerator(provider, jsonCoercer, zapLogger),
			resolver,
			cfg.Pipeline.BatchSize,
			zapLogger,
		),
		Exporter:      exporter,
		Presentations: presentationRepo,
		Slides:        slideRepo,
		Notifier:      notifier,
	}, zapLogger)

	// --- Задачи ---
	hub := api.NewJobHub(cfg.Server.CORSAllowedOrigins, zapLogger)
	jobManager := jobs.NewManager(jobs.Config{MaxActive: cfg.Pipeline.MaxActiveJobs}, jobs.NewRedisStore(redisClient, cfg.Redis.JobTTL, zapLogger))
	jobManager.SetNotifier(hub)

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go jobManager.RunJanitor(janitorCtx, 10*time.Minute, cfg.Pipeline.JobRetention)

	// --- HTTP ---
	if err := api.RegisterValidators(); err != nil {
		zapLogger.Fatal("Failed to register request validators", zap.Error(err))
	}
	var rateLimiter gin.HandlerFunc
	if cfg.RateLimit.PerMinute > 0 {
		rateLimiter = api.NewRateLimiter(redisClient, cfg.RateLimit.PerMinute, zapLogger)
	} else {
		zapLogger.Info("Generation rate limit is disabled")
	}

	handler := api.NewHandler(service, jobManager, webhook.NewSubscriptions(webhookRepo, zapLogger), hub, zapLogger)
	router := api.NewRouter(api.RouterConfig{
		Handler:        handler,
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimiter:    rateLimiter,
		StaticDir:      cfg.Server.StaticDir,
		Development:    !cfg.IsProduction(),
		Metrics:        true,
		Logger:         zapLogger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("Shutting down server", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server shutdown error", zap.Error(err))
	}
	stopJanitor()
	if err := jobManager.Shutdown(shutdownCtx); err != nil {
		zapLogger.Warn("Generation jobs did not finish in time", zap.Error(err))
	}
	notifier.Wait()
	hub.Close()

	zapLogger.Info("Server stopped")
}

// initZerolog настраивает глобальный zerolog, которым пользуются менеджер задач и миграции.
func initZerolog(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.Logger.Service).Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	level := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(cfg.Logger.Level); err == nil && lvl != zerolog.NoLevel {
		level = lvl
	}
	zerolog.SetGlobalLevel(level)
	// задачи получают логгер из контекста запроса, где его нет
	zerolog.DefaultContextLogger = &log.Logger
}
