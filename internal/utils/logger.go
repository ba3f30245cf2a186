package utils

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger is the key/value logging surface used by handlers and middleware
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) Logger
}

// ===== SLOG =====

type slogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, kv ...interface{}) { s.l.Debug(msg, kv...) }
func (s *slogLogger) Info(msg string, kv ...interface{})  { s.l.Info(msg, kv...) }
func (s *slogLogger) Warn(msg string, kv ...interface{})  { s.l.Warn(msg, kv...) }
func (s *slogLogger) Error(msg string, kv ...interface{}) { s.l.Error(msg, kv...) }

func (s *slogLogger) With(kv ...interface{}) Logger {
	return &slogLogger{l: s.l.With(kv...)}
}

// ===== ZAP =====

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger builds a zap logger; production mode emits JSON
func NewZapLogger(environment string) (Logger, func(), error) {
	var cfg zap.Config
	if strings.EqualFold(environment, "production") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	sugar := z.Sugar()
	return &zapLogger{s: sugar}, func() { _ = sugar.Sync() }, nil
}

func (z *zapLogger) Debug(msg string, kv ...interface{}) { z.s.Debugw(msg, kv...) }
func (z *zapLogger) Info(msg string, kv ...interface{})  { z.s.Infow(msg, kv...) }
func (z *zapLogger) Warn(msg string, kv ...interface{})  { z.s.Warnw(msg, kv...) }
func (z *zapLogger) Error(msg string, kv ...interface{}) { z.s.Errorw(msg, kv...) }

func (z *zapLogger) With(kv ...interface{}) Logger {
	return &zapLogger{s: z.s.With(kv...)}
}

// ===== GIN INTEGRATION =====

const loggerContextKey = "logger"

// ContextLogger stores a request-scoped logger carrying the request id
func ContextLogger(base Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := base
		if requestID := c.GetString("request_id"); requestID != "" {
			l = base.With("request_id", requestID)
		}
		c.Set(loggerContextKey, l)
		c.Next()
	}
}

// GetLogger returns the request logger, falling back to base
func GetLogger(c *gin.Context, base Logger) Logger {
	if v, ok := c.Get(loggerContextKey); ok {
		if l, ok := v.(Logger); ok {
			return l
		}
	}
	return base
}

// LoggerMiddleware writes one line per request, at a level chosen by status
func LoggerMiddleware(base Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		l := GetLogger(c, base)
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			l.Error("request completed", kv...)
		case status >= 400:
			l.Warn("request completed", kv...)
		default:
			l.Info("request completed", kv...)
		}
	}
}
