//go:build windows

package daemon

import (
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

const stillActive = 259

func isProcessRunning(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == stillActive
}

func detachAttrs() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
		HideWindow:    true,
	}
}

// killProcess terminates the process; Windows has no SIGTERM to send a
// console-less child, so the timeout only bounds the wait for exit.
func killProcess(pid int, timeout time.Duration) error {
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE|windows.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("process not found: %w", err)
	}
	defer windows.CloseHandle(h)

	if err := windows.TerminateProcess(h, 1); err != nil {
		return fmt.Errorf("failed to terminate process: %w", err)
	}
	if _, err := windows.WaitForSingleObject(h, uint32(timeout/time.Millisecond)); err != nil {
		return fmt.Errorf("failed waiting for exit: %w", err)
	}
	return nil
}
