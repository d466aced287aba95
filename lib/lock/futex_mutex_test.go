package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFutexMutex_LockUnlock(t *testing.T) {
	var m FutexMutex
	m.Lock()
	require.False(t, m.TryLock())
	m.Unlock()
	require.True(t, m.TryLock())
	m.Unlock()
}

func TestFutexMutex_UnlockOfUnlocked(t *testing.T) {
	var m FutexMutex
	require.Panics(t, func() {
		m.Unlock()
	})
}

func TestFutexMutex_Contended(t *testing.T) {
	const (
		workers = 16
		loops   = 10_000
	)
	var (
		m       FutexMutex
		wg      sync.WaitGroup
		counter int
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < loops; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, workers*loops, counter)
	require.True(t, m.TryLock())
	m.Unlock()
}

func BenchmarkFutexMutex(b *testing.B) {
	var m FutexMutex
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Lock()
			m.Unlock()
		}
	})
}

func BenchmarkSyncMutex(b *testing.B) {
	var m sync.Mutex
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Lock()
			m.Unlock()
		}
	})
}
