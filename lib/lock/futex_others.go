//go:build !linux
// +build !linux

package lock

import (
	"sync/atomic"

	"github.com/benz9527/rbkit/lib/infra"
)

const spinCycles = 30

// No futex syscall here, spin then yield until the word changes.
func futexWait(addr *uint32, val uint32) {
	for i := 0; atomic.LoadUint32(addr) == val; i++ {
		if i < 4 {
			infra.ProcYield(spinCycles)
			continue
		}
		infra.OsYield()
	}
}

func futexWake(addr *uint32, n uint32) {}
