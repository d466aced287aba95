package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/rbkit/lib/infra"
	"github.com/benz9527/rbkit/lib/kv"
)

const (
	TreeLenMetric         = "rbkit.tree.len"
	TreeBlackHeightMetric = "rbkit.tree.black_height"
	TreeNameAttr          = "rbkit.tree.name"
)

var (
	once sync.Once
)

type appStats struct {
	ctx              context.Context
	shutdownCallback ShutdownFunc
	goroutines       metric.Int64ObservableUpDownCounter
	processes        metric.Int64ObservableUpDownCounter
}

func (stats *appStats) waitForShutdown() {
	if stats == nil || stats.shutdownCallback == nil {
		return
	}
	go func() {
		<-stats.ctx.Done()
		_ = stats.shutdownCallback(context.Background())
	}()
}

func appMeterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("rbkit/app/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the goroutines, processes and go runtime stats
// into the global meter provider once. The shutdown is called after the
// ctx is done.
func InitAppStats(ctx context.Context, name string, shutdown ShutdownFunc) {
	once.Do(func() {
		meter := otel.Meter(
			appMeterName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats := &appStats{
			ctx:              ctx,
			shutdownCallback: shutdown,
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			)),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.GOMAXPROCS(0)))
					return nil
				}),
			)),
		}
		_ = otelruntime.Start()
		stats.waitForShutdown()
	})
}

// RegisterTreeStats observes the len and the black height of the tree on
// every collection. The stater has to be thread safe if the tree is
// mutated concurrently with the collection.
func RegisterTreeStats(meter metric.Meter, name string, stater kv.TreeStater) (metric.Registration, error) {
	if meter == nil || stater == nil {
		return nil, infra.NewErrorStack("[observability] nil meter or tree stater")
	}

	treeLen, err := meter.Int64ObservableGauge(
		TreeLenMetric,
		metric.WithDescription("The number of the tree nodes."),
	)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	blackHeight, err := meter.Int64ObservableGauge(
		TreeBlackHeightMetric,
		metric.WithDescription("The black nodes from the root to a nil leaf."),
	)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}

	attrs := metric.WithAttributes(attribute.String(TreeNameAttr, name))
	reg, err := meter.RegisterCallback(func(ctx context.Context, ob metric.Observer) error {
		ob.ObserveInt64(treeLen, stater.Len(), attrs)
		ob.ObserveInt64(blackHeight, int64(stater.BlackHeight()), attrs)
		return nil
	}, treeLen, blackHeight)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	return reg, nil
}
