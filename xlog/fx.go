package xlog

import (
	"time"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// FxXLogger records the fx app lifecycle by the "Fx" component logger.
// Only the results are logged, the executing events are skipped.
type FxXLogger struct {
	logger XLogger
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		l.hookDone("OnStart", e.FunctionName, e.CallerName, e.Runtime, e.Err)
	case *fxevent.OnStopExecuted:
		l.hookDone("OnStop", e.FunctionName, e.CallerName, e.Runtime, e.Err)
	case *fxevent.Supplied:
		l.done(e.Err, "supplied", zap.String("type", e.TypeName))
	case *fxevent.Provided:
		l.done(e.Err, "provided",
			zap.String("constructor", e.ConstructorName),
			zap.Strings("types", e.OutputTypeNames),
		)
	case *fxevent.Invoked:
		l.done(e.Err, "invoked", zap.String("function", e.FunctionName))
	case *fxevent.Started:
		l.done(e.Err, "started")
	case *fxevent.Stopping:
		l.logger.Info("stopping", zap.Stringer("signal", e.Signal))
	case *fxevent.Stopped:
		l.done(e.Err, "stopped")
	case *fxevent.RollingBack:
		l.logger.ErrorStack(e.StartErr, "start failed, rolling back")
	case *fxevent.RolledBack:
		l.done(e.Err, "rolled back")
	case *fxevent.LoggerInitialized:
		l.done(e.Err, "logger initialized", zap.String("constructor", e.ConstructorName))
	default:
	}
}

func (l *FxXLogger) hookDone(hook, fn, caller string, runtime time.Duration, err error) {
	fields := []zap.Field{
		zap.String("hook", hook),
		zap.String("function", fn),
		zap.String("caller", caller),
		zap.Duration("runtime", runtime),
	}
	if err != nil {
		l.logger.ErrorStack(err, "hook failed", fields...)
		return
	}
	l.logger.Debug("hook done", fields...)
}

func (l *FxXLogger) done(err error, what string, fields ...zap.Field) {
	if err != nil {
		l.logger.ErrorStack(err, what+" failed", fields...)
		return
	}
	l.logger.Debug(what, fields...)
}

func NewFxXLogger(logger XLogger) *FxXLogger {
	return &FxXLogger{logger: newComponentXLogger(logger, "Fx")}
}
