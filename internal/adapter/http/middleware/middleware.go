package middleware

import (
	"net/http"
	"strings"
	"time"

	"sportsbook-ledger/internal/core/ports"
	"sportsbook-ledger/pkg/apperror"
	"sportsbook-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// Context keys
	CtxAccountID = "account_id"
	CtxUsername  = "username"
)

// BearerAuth validates the Authorization bearer token and stores the
// resolved account identity on the request context.
func BearerAuth(verifier ports.TokenVerifier, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Error(c, apperror.ErrUnauthorized())
			c.Abort()
			return
		}

		claims, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Debug().Err(err).Msg("token verification failed")
			response.Error(c, apperror.ErrUnauthorized())
			c.Abort()
			return
		}

		c.Set(CtxAccountID, claims.AccountID)
		c.Set(CtxUsername, claims.Username)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"ok":         false,
					"error_code": "INTERNAL_ERROR",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected with 413 Payload Too Large.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
