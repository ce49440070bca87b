package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/UnicornIn/distribuidores/internal/config"
	"github.com/UnicornIn/distribuidores/internal/database"
	"github.com/UnicornIn/distribuidores/internal/models"
)

const userContextKey = "auth_user"

// AuthMiddleware resuelve el usuario dueño de la API key del header
// X-API-Key y lo deja en el contexto del request
func AuthMiddleware(userRepo *database.UserRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, models.NewUnauthorizedError("API key required"))
			c.Abort()
			return
		}

		user, key, err := userRepo.GetUserByKeyHash(database.HashAPIKey(apiKey))
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.NewUnauthorizedError("Invalid API key"))
			c.Abort()
			return
		}

		go func() {
			if err := userRepo.UpdateKeyLastUsed(key.ID); err != nil {
				logger.WithError(err).Warn("Error actualizando last_used de API key")
			}
		}()

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRoles corta el request si el usuario autenticado no tiene ninguno
// de los roles indicados
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, models.NewUnauthorizedError("Authentication required"))
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, models.NewForbiddenError("Insufficient role for this operation"))
		c.Abort()
	}
}

// RateLimitMiddleware limita requests por usuario con contadores en Redis.
// Sin Redis el middleware deja pasar todo.
func RateLimitMiddleware(redis *database.Redis, cfg *config.Config, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redis == nil {
			c.Next()
			return
		}

		user := currentUser(c)
		if user == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s", user.ID)
		count, err := redis.Incr(key)
		if err != nil {
			// Redis caído no tumba el tráfico
			logger.WithError(err).Warn("Error consultando rate limit")
			c.Next()
			return
		}
		if count == 1 {
			if err := redis.Expire(key, cfg.RateLimit.Window); err != nil {
				logger.WithError(err).Warn("Error fijando ventana de rate limit")
			}
		}

		if count > int64(cfg.RateLimit.Default) {
			c.JSON(http.StatusTooManyRequests, models.NewRateLimitedError("Rate limit exceeded"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// currentUser obtiene el usuario autenticado del contexto
func currentUser(c *gin.Context) *models.User {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
