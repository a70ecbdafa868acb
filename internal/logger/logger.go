// Package logger holds the process-wide zap logger.
package logger

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global atomic.Pointer[zap.Logger]
	once   sync.Once
)

// Init builds the global logger at the given level ("debug", "info", ...).
// Unknown levels fall back to info. Only the first call has an effect.
func Init(level string) error {
	var err error
	once.Do(func() {
		l, buildErr := New(level)
		if buildErr != nil {
			err = buildErr
			l = zap.NewNop()
		}
		global.Store(l)
	})
	return err
}

// Get returns the global logger, initializing it at info level if needed.
// It is safe to call from any goroutine.
func Get() *zap.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	_ = Init("info")
	return global.Load()
}

// Sync flushes buffered entries.
func Sync() {
	if l := global.Load(); l != nil {
		_ = l.Sync()
	}
}

// New builds a JSON production logger with ISO8601 timestamps.
func New(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"

	return config.Build()
}
