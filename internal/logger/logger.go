package logger

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gw2sdk/gw2sdk-go/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// current is the package-level logger installed by Init. Promise dispatch
// goroutines read it concurrently with Init.
var current atomic.Pointer[zap.Logger]

// S returns the sugared package-level logger, or nil before Init.
func S() *zap.SugaredLogger {
	if l := current.Load(); l != nil {
		return l.Sugar()
	}
	return nil
}

// Set installs l as the package-level logger. A nil l uninstalls it.
func Set(l *zap.Logger) {
	current.Store(l)
}

// Logger is the structured logging surface shared by the SDK and runtime packages.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// Init initializes a zap logger using settings from config and installs it as
// the package-level logger.
func Init(cfg *config.Config) (Logger, error) {
	return InitTo(cfg, os.Stdout)
}

// InitTo is Init writing to out instead of stdout.
func InitTo(cfg *config.Config, out zapcore.WriteSyncer) (Logger, error) {
	level := parseLevel(cfg.LogLevel)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(out),
		level,
	)

	l := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("app", cfg.AppName))
	Set(l)
	return New(l), nil
}

func parseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

// Close flushes any buffered loggers.
func Close() error {
	l := current.Load()
	if l == nil {
		return nil
	}
	return l.Sync()
}

// New adapts a zap logger to Logger.
func New(l *zap.Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return zapLogger{l: l.WithOptions(zap.AddCallerSkip(1))}
}

type zapLogger struct {
	l *zap.Logger
}

func (z zapLogger) InfoObj(msg, key string, obj interface{})  { z.l.Info(msg, zap.Any(key, obj)) }
func (z zapLogger) DebugObj(msg, key string, obj interface{}) { z.l.Debug(msg, zap.Any(key, obj)) }
func (z zapLogger) WarnObj(msg, key string, obj interface{})  { z.l.Warn(msg, zap.Any(key, obj)) }
func (z zapLogger) ErrorObj(msg, key string, obj interface{}) { z.l.Error(msg, zap.Any(key, obj)) }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

var (
	fallbackOnce sync.Once
	fallback     *zap.Logger
)

// Default returns a Logger backed by the installed logger when Init has run, and by a
// stderr logger at warn level otherwise. It never discards warnings.
func Default() Logger {
	return defaultLogger{}
}

// defaultLogger resolves its sink on every call so that a later Init is honoured.
type defaultLogger struct{}

func (defaultLogger) sink() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	fallbackOnce.Do(func() {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "ts"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(zapcore.Lock(os.Stderr)),
			zapcore.WarnLevel,
		)
		fallback = zap.New(core)
	})
	return fallback
}

func (d defaultLogger) InfoObj(msg, key string, obj interface{}) {
	d.sink().Info(msg, zap.Any(key, obj))
}

func (d defaultLogger) DebugObj(msg, key string, obj interface{}) {
	d.sink().Debug(msg, zap.Any(key, obj))
}

func (d defaultLogger) WarnObj(msg, key string, obj interface{}) {
	d.sink().Warn(msg, zap.Any(key, obj))
}

func (d defaultLogger) ErrorObj(msg, key string, obj interface{}) {
	d.sink().Error(msg, zap.Any(key, obj))
}

// Minimal object logging helpers -------------------------------------------------
// These log the given object as a single structured field named `key`.
func InfoObj(msg, key string, obj interface{}) {
	if l := current.Load(); l != nil {
		l.Info(msg, zap.Any(key, obj))
	}
}

func DebugObj(msg, key string, obj interface{}) {
	if l := current.Load(); l != nil {
		l.Debug(msg, zap.Any(key, obj))
	}
}

func WarnObj(msg, key string, obj interface{}) {
	if l := current.Load(); l != nil {
		l.Warn(msg, zap.Any(key, obj))
	}
}

func ErrorObj(msg, key string, obj interface{}) {
	if l := current.Load(); l != nil {
		l.Error(msg, zap.Any(key, obj))
	}
}
