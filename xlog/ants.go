package xlog

import (
	"go.uber.org/zap/zapcore"
)

// AntsXLogger adapts the XLogger to the ants pool logger.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	l := newComponentXLogger(logger, "Ants")
	return &AntsXLogger{
		logger: l,
	}
}
