// Package daemon runs the scheduler as a detached background process and
// tracks it through a pid file.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

var (
	ErrAlreadyRunning = errors.New("daemon is already running")
	ErrNotRunning     = errors.New("daemon is not running")
)

const (
	shutdownTimeout = 5 * time.Second
	pollInterval    = 100 * time.Millisecond
	startupWait     = 2 * time.Second
)

// Daemon starts and stops a background copy of the current executable.
type Daemon struct {
	// PidFile is written by the background process and read by Stop.
	PidFile string
	// LogFile receives the background process's stdout and stderr.
	LogFile string
	// Args are passed to the re-executed binary, e.g. []string{"run"}.
	Args []string

	executable func() (string, error)
}

// New returns a Daemon that re-executes the running binary.
func New(pidFile, logFile string, args ...string) *Daemon {
	return &Daemon{
		PidFile:    pidFile,
		LogFile:    logFile,
		Args:       args,
		executable: os.Executable,
	}
}

// IsRunning reports the recorded pid and whether that process is alive.
func (d *Daemon) IsRunning() (int, bool) {
	pid, err := ReadPidFile(d.PidFile)
	if err != nil {
		return 0, false
	}
	return pid, isProcessRunning(pid)
}

// Start launches the background process. It returns the child's pid once
// the child has written its pid file. A child that exits first, or never
// writes the file within startupWait, is reported as an error.
func (d *Daemon) Start() (int, error) {
	if pid, ok := d.IsRunning(); ok {
		return pid, fmt.Errorf("%w (pid %d, pidfile %s)", ErrAlreadyRunning, pid, d.PidFile)
	}
	// stale file from a crashed daemon
	if err := RemovePidFile(d.PidFile); err != nil {
		return 0, fmt.Errorf("failed to remove stale pid file: %w", err)
	}

	exe, err := d.executable()
	if err != nil {
		return 0, fmt.Errorf("failed to locate executable: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(d.LogFile), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create log directory: %w", err)
	}
	logf, err := os.OpenFile(d.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open daemon log: %w", err)
	}
	defer logf.Close()

	cmd := exec.Command(exe, d.Args...)
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.SysProcAttr = detachAttrs()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}
	pid := cmd.Process.Pid

	// Reap the child so an early exit is seen here instead of leaving a
	// zombie that still answers signal 0.
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	timeout := time.After(startupWait)
	for {
		if got, err := ReadPidFile(d.PidFile); err == nil && got == pid {
			return pid, nil
		}
		select {
		case err := <-exited:
			if err == nil {
				err = errors.New("exit status 0")
			}
			return pid, fmt.Errorf("daemon exited during startup (%v), see %s", err, d.LogFile)
		case <-timeout:
			return pid, fmt.Errorf("daemon did not write %s within %s, see %s", d.PidFile, startupWait, d.LogFile)
		case <-ticker.C:
		}
	}
}

// Stop terminates the background process and waits for it to exit. A
// missing pid file yields ErrNotRunning; a pid file naming a dead process is
// removed and also yields ErrNotRunning.
func (d *Daemon) Stop() error {
	pid, err := ReadPidFile(d.PidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotRunning
		}
		// unreadable or empty pid file
		_ = RemovePidFile(d.PidFile)
		return fmt.Errorf("%w: %v", ErrNotRunning, err)
	}

	if !isProcessRunning(pid) {
		_ = RemovePidFile(d.PidFile)
		return fmt.Errorf("%w (stale pid %d)", ErrNotRunning, pid)
	}

	if err := killProcess(pid, shutdownTimeout); err != nil {
		return err
	}

	// The daemon removes its own pid file on graceful exit; after SIGKILL it
	// cannot.
	return RemovePidFile(d.PidFile)
}

// Restart stops a running daemon (if any) and starts a new one.
func (d *Daemon) Restart() (int, error) {
	if err := d.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		return 0, err
	}
	return d.Start()
}

// Acquire is called from inside the background process. It records the
// current pid and returns a func that removes the record.
func (d *Daemon) Acquire() (func(), error) {
	if pid, ok := d.IsRunning(); ok && pid != os.Getpid() {
		return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}
	if err := WritePidFile(d.PidFile); err != nil {
		return nil, fmt.Errorf("failed to write pid file: %w", err)
	}
	return func() { _ = RemovePidFile(d.PidFile) }, nil
}
