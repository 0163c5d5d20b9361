package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contacts-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	userH *UserHandler,
	contactH *ContactHandler,
	tokens *service.TokenService,
	userServ *service.UserService,
	meLimiter service.RateLimiter,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	requireAuth := AuthMiddleware(tokens, userServ)

	auth := r.Group("/api/v1/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout)
	auth.GET("/verify-email", authH.VerifyEmail)
	auth.POST("/request-email-verification", authH.RequestEmailVerification)

	api := r.Group("/api/v1")
	api.GET("/me", RateLimitMiddleware(meLimiter), requireAuth, userH.Me)
	api.POST("/users/avatar", requireAuth, userH.UploadAvatar)

	contacts := api.Group("/contacts", requireAuth)
	contacts.POST("", contactH.Create)
	contacts.GET("", contactH.List)
	contacts.GET("/:id", contactH.Get)
	contacts.PUT("/:id", contactH.Update)
	contacts.DELETE("/:id", contactH.Delete)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
