package logging

import (
	"context"

	"go.uber.org/zap"
)

var (
	defaultLogger *zap.SugaredLogger
)

type Logger struct {
	Zap *zap.Logger
}

func New() *Logger {
	zapLogger, _ := zap.NewProduction()

	logger := &Logger{Zap: zapLogger}

	defaultLogger = zapLogger.With(
		zap.String("logger", "defaultLogger"),
	).WithOptions(
		zap.AddCallerSkip(1),
	).Sugar()

	return logger
}

// Sl returns the process-wide sugared logger for code that only has a context.
func Sl(ctx context.Context) *zap.SugaredLogger {
	if defaultLogger == nil {
		defaultLogger = zap.NewNop().Sugar()
	}
	return defaultLogger
}
