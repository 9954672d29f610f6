package api

import (
	"net/http"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS wraps the rs/cors handler as gin middleware
func CORS() gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

// RequestLogger logs each request with the shared structured logger
func RequestLogger() gin.HandlerFunc {
	log := logger.Component("api")
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		log.Info("request",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", ctx.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// ErrorHandler recovers panics into a JSON error envelope
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered interface{}) {
		msg := "an unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "INTERNAL_ERROR", Message: msg},
		})
		ctx.Abort()
	})
}
