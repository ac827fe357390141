package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ModeDebug = "debug"
	ModeProd  = "prod"
)

var log = zap.NewNop()

func Init(mode string) error {
	var (
		l   *zap.Logger
		err error
	)

	switch mode {
	case ModeDebug:
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err = cfg.Build(zap.AddCallerSkip(1))
	case ModeProd:
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err = cfg.Build(zap.AddCallerSkip(1))
	default:
		return fmt.Errorf("unknown log mode %q (allowed: %s, %s)", mode, ModeDebug, ModeProd)
	}
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	log = l
	return nil
}

// InitTestLogger keeps log output out of test runs.
func InitTestLogger() {
	log = zap.NewNop()
}

func Sync() {
	_ = log.Sync()
}

func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}
