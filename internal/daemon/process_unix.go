//go:build !windows

package daemon

import (
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// isProcessRunning uses signal 0 to check process existence.
func isProcessRunning(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}

// detachAttrs puts the child in its own session so it outlives the
// terminal that started it.
func detachAttrs() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

// killProcess sends SIGTERM and waits for the process to exit. If it is
// still alive after timeout, it sends SIGKILL.
func killProcess(pid int, timeout time.Duration) error {
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !isProcessRunning(pid) {
			return nil
		}
		time.Sleep(pollInterval)
	}

	if err := unix.Kill(pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return fmt.Errorf("failed to send SIGKILL: %w", err)
	}
	time.Sleep(5 * pollInterval)
	return nil
}
