package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey  = "username"
	ctxTokenKey = "token"
)

func (s *HTTPServer) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", s.allowedOrigin)
		h.Set("Access-Control-Max-Age", "86400")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, "+common.RequestIDHeaderName)
		h.Set("Access-Control-Expose-Headers", common.RefreshedTokenHeaderName+", "+common.RequestIDHeaderName)
		h.Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *HTTPServer) accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", requestid.Get(c),
		)
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// tokenAuthMiddleware requires a valid bearer token. With slide set, a token
// that has entered its refresh window gets a replacement in the
// X-Refreshed-Token header. The old token is never revoked here, so parallel
// requests carrying it still pass.
func (s *HTTPServer) tokenAuthMiddleware(slide bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
			return
		}

		ctx := c.Request.Context()
		user, err := s.sessions.Authenticate(ctx, token)
		if err != nil {
			s.respondError(c, err)
			return
		}

		if slide {
			if fresh, refreshed, err := s.sessions.Renew(ctx, token); err != nil {
				s.logger.Warn(ctx, "sliding refresh failed", "user", user, "error", err)
			} else if refreshed {
				c.Header(common.RefreshedTokenHeaderName, fresh)
			}
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxTokenKey, token)
		c.Next()
	}
}
