package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// EnsureJSONBody rejects director requests before any body parsing when the
// declared content type is not JSON.
func EnsureJSONBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType := c.GetHeader("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
			abortWithMessage(c, http.StatusUnsupportedMediaType, "content type must be application/json")
			return
		}
		c.Next()
	}
}
