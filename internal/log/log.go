// Package log is a thin key-value facade over zap so that call sites stay
// compact:
//
//	log.Info("artifact written", "path", path, "bytes", n)
//	log.Error("build failed", err, "mode", mode)
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar      *zap.SugaredLogger
	level      zap.AtomicLevel
	loggerOnce sync.Once
)

func initLogger() {
	loggerOnce.Do(func() {
		level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

		cfg := zap.NewProductionConfig()
		cfg.Level = level
		cfg.OutputPaths = []string{"stderr"}
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

		base, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			// Last resort: a no-op logger keeps call sites safe.
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

// SetDebug lowers the minimum level to DEBUG.
func SetDebug() {
	initLogger()
	level.SetLevel(zapcore.DebugLevel)
}

func Debug(msg string, kv ...any) {
	initLogger()
	sugar.Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	initLogger()
	sugar.Infow(msg, kv...)
}

func Warn(msg string, kv ...any) {
	initLogger()
	sugar.Warnw(msg, kv...)
}

// Error logs msg with err prepended to the key-value list.
func Error(msg string, err error, kv ...any) {
	initLogger()
	extended := append([]any{"err", err}, kv...)
	sugar.Errorw(msg, extended...)
}

// Sync flushes buffered log entries; call before process exit.
func Sync() {
	initLogger()
	_ = sugar.Sync()
}
