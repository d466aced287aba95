package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/benz9527/rbkit/config"
	"github.com/benz9527/rbkit/lib/infra"
	"github.com/benz9527/rbkit/lib/kv"
	"github.com/benz9527/rbkit/observability"
	"github.com/benz9527/rbkit/xlog"
)

type configItems = kv.ThreadSafeOrderedMap[string, string]

func newLogger(opts *options) xlog.XLogger {
	lvl := xlog.LogLevelInfo
	switch strings.ToUpper(strings.TrimSpace(opts.logLevel)) {
	case xlog.LogLevelDebug.String():
		lvl = xlog.LogLevelDebug
	case xlog.LogLevelWarn.String():
		lvl = xlog.LogLevelWarn
	case xlog.LogLevelError.String():
		lvl = xlog.LogLevelError
	default:
	}
	enc := xlog.JSON
	if opts.plainLog {
		enc = xlog.PlainText
	}
	// The stdout is kept for the config entries.
	return xlog.NewXLogger(
		xlog.WithXLoggerStdErrWriter(),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerLevel(lvl),
	)
}

func newApp(opts *options, out io.Writer, extra ...fx.Option) *fx.App {
	logger := newLogger(opts)
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Supply(opts),
		fx.Provide(
			func() xlog.XLogger { return logger },
			func() io.Writer { return out },
			provideConfigItems,
			provideMeter,
		),
		fx.Invoke(
			registerTreeStats,
			printConfig,
			watchConfig,
		),
		fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					_ = logger.Sync()
					logger.Close()
					return nil
				},
			})
		}),
		fx.Options(extra...),
	)
}

func provideConfigItems(lc fx.Lifecycle, opts *options, logger xlog.XLogger) (configItems, error) {
	items, err := config.Load(opts.configPath, config.WithLoaderLogger(logger))
	if err != nil {
		if items != nil {
			items.Release()
		}
		return nil, err
	}
	m := kv.NewThreadSafeOrderedMap[string, string](items)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			m.Release()
			return nil
		},
	})
	return m, nil
}

func provideMeter(lc fx.Lifecycle, opts *options) (metric.Meter, error) {
	var (
		shutdown observability.ShutdownFunc
		err      error
	)
	switch opts.metrics {
	case metricsConsole:
		shutdown, err = observability.NewConsoleMetricsExporter(10*time.Second, 5*time.Second)
	case metricsPrometheus:
		shutdown, err = observability.NewPrometheusMetricsExporter()
	default:
		// The global noop meter provider.
		return otel.Meter("rbkit/rbconf"), nil
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	observability.InitAppStats(ctx, "rbconf", nil)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			cancel()
			return shutdown(ctx)
		},
	})
	return otel.Meter("rbkit/rbconf"), nil
}

func registerTreeStats(lc fx.Lifecycle, opts *options, meter metric.Meter, items configItems) error {
	reg, err := observability.RegisterTreeStats(meter, opts.configPath, items)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return reg.Unregister()
		},
	})
	return nil
}

func printConfig(opts *options, items configItems, out io.Writer) error {
	if opts.key != "" {
		val, ok := items.Get(opts.key)
		if !ok {
			return infra.NewErrorStack("[rbconf] key not found: " + opts.key)
		}
		_, err := fmt.Fprintln(out, val)
		return err
	}
	var err error
	items.Foreach(func(_ int64, key, val string) bool {
		_, err = fmt.Fprintf(out, "%s=%s\n", key, val)
		return err == nil
	})
	return err
}

// reloadInto removes the stale keys and then replaces the rest by the
// fresh ones. The fresh map is released afterwards.
func reloadInto(items configItems, fresh kv.OrderedMap[string, string]) {
	defer fresh.Release()
	stale := items.ListKeys(func(key string) bool {
		return !fresh.Contains(key)
	})
	for _, key := range stale {
		_ = items.Delete(key)
	}
	fresh.Foreach(func(_ int64, key, val string) bool {
		_ = items.Replace(key, val)
		return true
	})
}

func watchConfig(lc fx.Lifecycle, opts *options, items configItems, logger xlog.XLogger) {
	if !opts.watch {
		return
	}
	var w *config.Watcher
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			w, err = config.NewWatcher(opts.configPath, func(fresh kv.OrderedMap[string, string]) {
				reloadInto(items, fresh)
				logger.Info("config entries updated",
					zap.String("path", opts.configPath),
					zap.Int64("len", items.Len()),
				)
			}, config.WithLoaderLogger(logger))
			return err
		},
		OnStop: func(ctx context.Context) error {
			if w == nil {
				return nil
			}
			return w.Close()
		},
	})
}
