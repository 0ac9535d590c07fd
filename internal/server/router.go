package server

import (
	"bytes"
	"io"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aryatravel/arya/internal/app/middleware"
	"github.com/aryatravel/arya/internal/pkg/config"
	"github.com/aryatravel/arya/internal/routes"
)

// SetupRouter configures the Gin router with middleware and routes
func SetupRouter(dbPool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		Context:    zapContextFunc,
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	r.Use(middleware.OTELGinMiddleware("arya"))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityMiddleware())

	// Make the pool available to handlers that need raw access
	r.Use(func(c *gin.Context) {
		c.Set("db", dbPool)
		c.Next()
	})

	if err := routes.Setup(r, dbPool, cfg, logger); err != nil {
		return nil, err
	}

	return r, nil
}

// zapContextFunc extracts trace information and request details for logging
func zapContextFunc(c *gin.Context) []zapcore.Field {
	fields := []zapcore.Field{}

	if requestID := c.Writer.Header().Get("X-Request-Id"); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	if trace.SpanFromContext(c.Request.Context()).SpanContext().IsValid() {
		fields = append(fields, zap.String("trace_id", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()))
		fields = append(fields, zap.String("span_id", trace.SpanFromContext(c.Request.Context()).SpanContext().SpanID().String()))
	}

	if c.Request.Body != nil {
		var buf bytes.Buffer
		tee := io.TeeReader(c.Request.Body, &buf)
		body, _ := io.ReadAll(tee)
		c.Request.Body = io.NopCloser(&buf)
		fields = append(fields, zap.String("body", string(body)))
	}

	return fields
}
