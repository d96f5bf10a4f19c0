package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tweedegolf/mailchimp-v3-subscriber/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging surface shared across packages.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// ZapLogger logs each object as a single structured field named `key`.
type ZapLogger struct {
	l *zap.Logger
}

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Init initializes the zap logger from config. Logs go to stderr so stdout
// stays reserved for command output.
func Init(cfg *config.Config) (*ZapLogger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	zl := New(cfg.LogLevel, zapcore.Lock(os.Stderr))
	S = zl.l.Sugar()
	return zl, nil
}

// New builds a JSON logger at the given level writing to w.
func New(level string, w io.Writer) *ZapLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(w),
		ParseLevel(level),
	)
	return FromZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)))
}

// FromZap wraps an existing zap.Logger.
func FromZap(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{l: l}
}

// ParseLevel maps a config string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

func (z *ZapLogger) InfoObj(msg, key string, obj interface{}) {
	z.l.Info(msg, zap.Any(key, obj))
}

func (z *ZapLogger) DebugObj(msg, key string, obj interface{}) {
	z.l.Debug(msg, zap.Any(key, obj))
}

func (z *ZapLogger) WarnObj(msg, key string, obj interface{}) {
	z.l.Warn(msg, zap.Any(key, obj))
}

func (z *ZapLogger) ErrorObj(msg, key string, obj interface{}) {
	z.l.Error(msg, zap.Any(key, obj))
}
