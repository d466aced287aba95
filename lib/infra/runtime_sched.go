package infra

import (
	"runtime"
	_ "unsafe"
)

//go:linkname procYield runtime.procyield
func procYield(cycles uint32)

// ProcYield spins the CPU for about cycles PAUSE instructions.
func ProcYield(cycles uint32) {
	procYield(cycles)
}

// OsYield gives up the processor to other goroutines.
func OsYield() {
	runtime.Gosched()
}
