package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yukikurage/membership-api/internal/constants"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// New builds a zap logger writing to stdout. format is "json" or "console".
func New(level, format string) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch strings.ToLower(format) {
	case "", "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "console":
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), ParseLevel(level))
	return zap.New(core, zap.AddCaller()), nil
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// AccessLog logs one line per request. /health is skipped.
func AccessLog(log *zap.Logger) gin.HandlerFunc {
	sugar := log.Sugar()
	excludedPaths := map[string]bool{
		"/health": true,
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequest, requestID)
		c.Header(RequestIDHeader, requestID)

		if excludedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		sugar.Infow("HTTP request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"latency", time.Since(start).String(),
		)
	}
}

// FromContext returns a logger annotated with the request id, if any.
func FromContext(c *gin.Context, log *zap.Logger) *zap.Logger {
	if id := c.GetString(constants.ContextKeyRequest); id != "" {
		return log.With(zap.String("request_id", id))
	}
	return log
}
