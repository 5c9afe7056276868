package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var L *zap.Logger

func init() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(levelFromEnv(os.Getenv("LOG_LEVEL")))
	var err error
	L, err = config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
}

func levelFromEnv(value string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(value)); err != nil || value == "" {
		return zapcore.InfoLevel
	}
	return level
}

// WithComponent 回傳帶有 component 欄位的 logger，供 reaper、handler、service 等使用
func WithComponent(component string) *zap.Logger {
	return L.With(zap.String("component", component))
}

// Sync flushes buffered entries; call it before the process exits.
func Sync() {
	_ = L.Sync()
}
