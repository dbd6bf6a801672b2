package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"deck-server/internal/domain"
)

const userIDKey = "user_id"

// GinZapLogger пишет access-лог запросов. /health и /metrics не логируются.
func GinZapLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID),
		}
		if userID := c.GetString(userIDKey); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, zap.String("error", errs.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("Request handled", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Request handled", fields...)
		default:
			logger.Info("Request handled", fields...)
		}
	}
}

// AuthMiddleware проверяет HS256 JWT и кладёт user_id в контекст gin.
// Токен берётся из заголовка Authorization, а для websocket из query-параметра token.
func AuthMiddleware(secret []byte, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			logger.Debug("Missing access token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			handleServiceError(c, err, logger)
			return
		}

		userID, err := verifyToken(tokenString, secret)
		if err != nil {
			logger.Warn("Access token verification failed", zap.Error(err))
			handleServiceError(c, err, logger)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", fmt.Errorf("%w: authorization header is required", domain.ErrUnauthorized)
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", fmt.Errorf("%w: invalid authorization header format", domain.ErrUnauthorized)
	}
	return parts[1], nil
}

// verifyToken возвращает идентификатор пользователя из claim user_id или sub.
func verifyToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token has expired", domain.ErrUnauthorized)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if userID, _ := claims["user_id"].(string); userID != "" {
		return userID, nil
	}
	if sub, _ := claims.GetSubject(); sub != "" {
		return sub, nil
	}
	return "", fmt.Errorf("%w: token has no user id", domain.ErrUnauthorized)
}

// userID возвращает пользователя, установленного AuthMiddleware.
func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// NewRateLimiter ограничивает число запросов пользователя в минуту.
// Счётчики хранятся в Redis, поэтому лимит общий для всех реплик.
func NewRateLimiter(client *redis.Client, perMinute uint, logger *zap.Logger) gin.HandlerFunc {
	store := rateli.RedisStore(&rateli.RedisOptions{
		RedisClient: client,
		Rate:        time.Minute,
		Limit:       perMinute,
	})
	return rateli.RateLimiter(store, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			logger.Warn("Rate limit exceeded",
				zap.String("user_id", userID(c)),
				zap.Time("reset_time", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Detail: "too many requests, try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
			})
		},
		KeyFunc: func(c *gin.Context) string {
			if id := userID(c); id != "" {
				return "user:" + id
			}
			return "ip:" + c.ClientIP()
		},
	})
}
