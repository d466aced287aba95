package lock

import (
	"sync"
	"sync/atomic"
)

// References:
// Ulrich Drepper, "Futexes Are Tricky"
// https://www.akkadia.org/drepper/futex.pdf

const (
	unlocked uint32 = iota
	locked
	// Locked and maybe some waiters are sleeping on the word.
	contended
)

var _ sync.Locker = (*FutexMutex)(nil)

// FutexMutex is a non-reentrant mutual exclusion lock. The fast path is a
// single atomic instruction and the slow path parks the caller on a futex
// word. The zero value is an unlocked mutex.
type FutexMutex struct {
	state uint32
}

func (m *FutexMutex) Lock() {
	if atomic.CompareAndSwapUint32(&m.state, unlocked, locked) {
		return
	}
	m.lockSlow()
}

func (m *FutexMutex) lockSlow() {
	// Announce the waiter before sleeping, the owner has to wake us up.
	for atomic.SwapUint32(&m.state, contended) != unlocked {
		futexWait(&m.state, contended)
	}
}

// TryLock reports whether it acquired the lock without waiting.
func (m *FutexMutex) TryLock() bool {
	return atomic.CompareAndSwapUint32(&m.state, unlocked, locked)
}

// Unlock panics if the mutex is not locked.
func (m *FutexMutex) Unlock() {
	switch prev := atomic.SwapUint32(&m.state, unlocked); prev {
	case locked:
		return
	case unlocked:
		panic("[futex] unlock of unlocked mutex")
	default:
		futexWake(&m.state, 1)
	}
}
