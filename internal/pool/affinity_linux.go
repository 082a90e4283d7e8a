//go:build linux

package pool

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pin locks the calling goroutine to its OS thread and binds that thread to
// CPU i modulo the CPU count.
func pin(i int) (int, error) {
	runtime.LockOSThread()

	cpu := i % runtime.NumCPU()
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return cpu, err
	}
	return cpu, nil
}
