package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsMiddleware lets dispatch dashboards on the allowed origins call the
// API. An empty allow list admits any origin.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")
		if origin, ok := allowOrigin(c.GetHeader("Origin"), allowed); ok {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			h.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func allowOrigin(origin string, allowed []string) (string, bool) {
	if len(allowed) == 0 {
		return "*", true
	}
	for _, candidate := range allowed {
		switch {
		case candidate == "*":
			return "*", true
		case origin != "" && strings.EqualFold(candidate, origin):
			return origin, true
		}
	}
	return "", false
}
