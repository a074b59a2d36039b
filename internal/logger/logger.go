// Package logger provides the process-wide levelled logger. The level can
// be flipped at runtime (it is driven by a feature flag in main), so it is
// backed by a zap AtomicLevel.
package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.Mutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar = newSugared()
)

func newSugared() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Fall back to a no-op logger rather than crashing the process
		// over a logging config problem.
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Init sets the initial log level. Safe to call more than once.
func Init(lvl string) {
	SetLevel(lvl)
}

// SetLevel changes the active log level. Unknown names map to info.
func SetLevel(lvl string) {
	mu.Lock()
	defer mu.Unlock()
	level.SetLevel(parseLevel(lvl))
}

// GetLevel reports the active log level name.
func GetLevel() string {
	mu.Lock()
	defer mu.Unlock()
	return level.Level().String()
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
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

func Debugf(format string, args ...interface{}) { sugar.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { sugar.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { sugar.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { sugar.Errorf(format, args...) }
