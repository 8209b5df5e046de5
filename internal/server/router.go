package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const TraceIDKey = "trace_id"

// Routes is implemented by components that mount their own endpoints.
type Routes interface {
	RegisterRoutes(r gin.IRoutes)
}

// NewRouter builds the HTTP engine with recovery, trace ids and request
// logging.
func NewRouter(log *zap.Logger, routes ...Routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceIDMiddleware())
	r.Use(RequestLogger(log))

	for _, rt := range routes {
		rt.RegisterRoutes(r)
	}
	return r
}

// TraceIDMiddleware tags every request with a fresh trace id.
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.New().String()
		c.Set(TraceIDKey, traceID)
		c.Writer.Header().Set("X-Trace-ID", traceID)
		c.Next()
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String(TraceIDKey, c.GetString(TraceIDKey)),
		)
	}
}
