package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/memoria/internal/common"
	"github.com/dmitrijs2005/memoria/internal/server/auth"
	"github.com/dmitrijs2005/memoria/internal/wire"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// authRequired resolves the bearer token into an owner id.
func (s *HTTPServer) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, wire.ErrorResponse{Error: "missing token"})
			return
		}

		userID, err := auth.GetUserIDFromToken(strings.TrimPrefix(header, common.BearerPrefix), s.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, wire.ErrorResponse{Error: "invalid or expired token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()

		s.metrics.ObserveRequest(c.Request.Method, route, status, elapsed)
		s.logger.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", elapsed,
		)
	}
}

func ownerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
