//go:build linux
// +build linux

package lock

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// linux/futex.h
const (
	_FUTEX_WAIT         = 0
	_FUTEX_WAKE         = 1
	_FUTEX_PRIVATE_FLAG = 128
)

// futexWait sleeps while *addr == val. Spurious wakeups, EAGAIN and EINTR
// are fine because the caller re-checks the word in a loop.
func futexWait(addr *uint32, val uint32) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(_FUTEX_WAIT|_FUTEX_PRIVATE_FLAG),
		uintptr(val),
		0, 0, 0,
	)
}

func futexWake(addr *uint32, n uint32) {
	if _, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(_FUTEX_WAKE|_FUTEX_PRIVATE_FLAG),
		uintptr(n),
		0, 0, 0,
	); errno != 0 {
		panic("[futex] wake failed: " + errno.Error())
	}
}
