package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contacts-api/internal/domain"
	"contacts-api/internal/service"
)

const authUserKey = "auth_user"

// AuthMiddleware resuelve la identidad del request: decodifica el access
// token, carga el usuario por el subject y exige que la cuenta esté activa.
// Token inválido y usuario inexistente responden igual (401) para no revelar
// si la cuenta existe; cuenta desactivada responde 403.
func AuthMiddleware(tokens *service.TokenService, users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil || users == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := tokens.Decode(token, service.PurposeAccess)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			c.Abort()
			return
		}

		user, err := users.GetByEmail(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve user"})
			}
			c.Abort()
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "inactive user"})
			c.Abort()
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// GetAuthUser obtiene el usuario resuelto desde el contexto.
func GetAuthUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

// RateLimitMiddleware limita requests por IP de cliente.
func RateLimitMiddleware(limiter service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
