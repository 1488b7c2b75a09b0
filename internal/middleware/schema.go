package middleware

import (
	"coinbrief_backend/internal/util"
	"coinbrief_backend/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SchemaEnsurer interface {
	Ensure(ctx context.Context) error
}

// EnsureSchema 首个请求到达时建表，失败返回 503，下个请求会重试
func EnsureSchema(schema SchemaEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := schema.Ensure(c.Request.Context()); err != nil {
			logger.Log.Error("Failed to ensure schema", zap.Error(err))
			util.Error(c, http.StatusServiceUnavailable, "Database unavailable")
			c.Abort()
			return
		}
		c.Next()
	}
}
