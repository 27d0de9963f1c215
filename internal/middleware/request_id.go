package middleware

import (
	"time"

	"github.com/cleberrangel/estimate-histogram-api/internal/logger"
	"github.com/cleberrangel/estimate-histogram-api/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID é o header HTTP para request ID
	HeaderRequestID = "X-Request-ID"
	// HeaderTraceID é o header HTTP para trace ID (distributed tracing)
	HeaderTraceID = "X-Trace-ID"
)

// RequestID adiciona request_id único a cada requisição
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Usa ID do header se existir, senão gera novo (8 chars)
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()[:8]
		}

		// Trace ID para rastreamento distribuído
		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		// Adiciona ao contexto e header de resposta
		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		ctx = logger.WithTraceID(ctx, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		// Log da requisição
		log := logger.Get(ctx)
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Msg("Request started")

		c.Next()

		// Calcula duração
		duration := time.Since(start)
		statusCode := c.Writer.Status()
		latencyMs := duration.Milliseconds()

		metrics.Get().IncrementRequests(statusCode < 400, latencyMs)
		metrics.Get().TrackEndpoint(c.FullPath(), c.Request.Method, statusCode, latencyMs)

		// Log da resposta com métricas
		logEvent := log.Info()
		if statusCode >= 400 {
			logEvent = log.Warn()
		}
		if statusCode >= 500 {
			logEvent = log.Error()
		}

		logEvent.
			Int("status", statusCode).
			Int("size", c.Writer.Size()).
			Dur("latency", duration).
			Float64("latency_ms", float64(duration.Microseconds())/1000).
			Msg("Request completed")
	}
}
