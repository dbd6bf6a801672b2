package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	_ "deck-server/internal/api/docs"
)

// RouterConfig - зависимости HTTP роутера.
type RouterConfig struct {
	Handler        *Handler
	JWTSecret      []byte
	AllowedOrigins []string
	// RateLimiter применяется к запуску генерации, nil отключает лимит.
	RateLimiter gin.HandlerFunc
	StaticDir   string
	Development bool
	Metrics     bool
	Logger      *zap.Logger
}

// NewRouter собирает gin.Engine со всеми маршрутами сервиса.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(GinZapLogger(cfg.Logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		cfg.Logger.Info("CORSAllowedOrigins not set, allowing default", zap.String("origin", "http://localhost:3000"))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.StaticDir != "" {
		router.Static("/static", cfg.StaticDir)
	}

	api := router.Group("/api/v1/ppt")
	cfg.Handler.RegisterRoutes(api, AuthMiddleware(cfg.JWTSecret, cfg.Logger), cfg.RateLimiter)

	// метрики подключаются после регистрации маршрутов
	if cfg.Metrics {
		p := ginprometheus.NewPrometheus("gin")
		p.Use(router)
	}

	return router
}
