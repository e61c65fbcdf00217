package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prismstudio/director-core/common/helper"
	"github.com/prismstudio/director-core/common/logger"
)

func RequestId() func(c *gin.Context) {
	return func(c *gin.Context) {
		// A caller-supplied X-Request-Id wins; otherwise generate one.
		id := c.GetHeader(logger.RequestIdKey)
		if id == "" {
			id = helper.GenRequestID()
		}
		c.Set(logger.RequestIdKey, id)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIdKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(logger.RequestIdKey, id)
		c.Next()
	}
}
