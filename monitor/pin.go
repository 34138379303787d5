package monitor

import (
	"fmt"
	"runtime"

	sysconf "github.com/tklauser/go-sysconf"
	"golang.org/x/sys/unix"
)

// pinToCPU pins the calling OS thread to cpu, giving the monitor
// thread dedicated-core placement. The caller must have already
// called runtime.LockOSThread.
func pinToCPU(cpu int) error {
	n, err := sysconf.Sysconf(sysconf.SC_NPROCESSORS_ONLN)
	if err != nil {
		return fmt.Errorf("monitor: sysconf(_SC_NPROCESSORS_ONLN): %w", err)
	}
	if cpu < 0 || int64(cpu) >= n {
		return fmt.Errorf("monitor: cpu %d out of range [0,%d)", cpu, n)
	}

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

// lockAndPin locks the calling goroutine to its OS thread and, if cpu
// is non-negative, pins that thread to it. Called once at the top of
// Monitor.Run.
func lockAndPin(cpu int) error {
	runtime.LockOSThread()
	if cpu < 0 {
		return nil
	}
	return pinToCPU(cpu)
}
