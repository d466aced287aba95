package kv_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/rbkit/lib/kv"
	"github.com/benz9527/rbkit/xlog"
)

type poolLogWriter struct {
	lock sync.Mutex
	data bytes.Buffer
}

func (w *poolLogWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.data.Write(p)
}

func (w *poolLogWriter) Sync() error { return nil }

func (w *poolLogWriter) String() string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.data.String()
}

func TestThreadSafeOrderedMap_AntsPoolWithXLogger(t *testing.T) {
	w := &poolLogWriter{}
	logger := xlog.NewXLogger(xlog.WithXLoggerLevel(xlog.LogLevelDebug), xlog.WithXLoggerWriter(w))
	defer logger.Close()

	const workers, total = 8, 256
	p, err := antsv2.NewPool(workers, antsv2.WithLogger(xlog.NewAntsXLogger(logger)))
	require.NoError(t, err)
	defer p.Release()

	m := kv.NewThreadSafeOrderedMap[int, int](kv.NewOrderedRBMap[int, int]())
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		base := i * total
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			for j := 0; j < total; j++ {
				_ = m.Put(base+j, j)
			}
			if base == 0 {
				panic("ordered map worker panic")
			}
		}))
	}
	wg.Wait()

	// The panic of one worker does not lose the puts before it.
	require.Equal(t, int64(workers*total), m.Len())
	keys := m.Keys()
	require.IsIncreasing(t, keys)
	require.Equal(t, 0, keys[0])
	require.Equal(t, workers*total-1, keys[len(keys)-1])

	require.Eventually(t, func() bool {
		out := w.String()
		return strings.Contains(out, `"component":"Ants"`) &&
			strings.Contains(out, "ordered map worker panic")
	}, time.Second, 10*time.Millisecond)
}
