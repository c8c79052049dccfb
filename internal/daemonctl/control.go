// Package daemonctl launches and terminates the curtail daemon process on
// behalf of the CLI. The daemon itself is controlled through its HTTP API;
// this package only handles the process boundary (spawn, pid file, signals).
package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"curtail/internal/api"
	"curtail/internal/config"
)

// ErrDaemonNotRunning indicates no daemon process could be found.
var ErrDaemonNotRunning = errors.New("daemon not running")

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

// PIDPath returns the daemon pid file location for a configuration.
func PIDPath(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, "curtaild.pid")
}

// Launch starts a detached daemon process via `<executable> serve`.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return errors.New("resolve executable: executable path is empty")
	}

	args := []string{"serve"}
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		args = append(args, "--config", path)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}

	proc := exec.Command(executablePath, args...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForHealthy polls the daemon health endpoint until it answers or the
// timeout elapses.
func WaitForHealthy(ctx context.Context, client *api.Client, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := client.Health(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("timeout waiting for daemon")
	}
	return fmt.Errorf("daemon failed to become healthy: %w", lastErr)
}

// ReadPID reads the daemon pid file and reports whether that process is
// still alive.
func ReadPID(pidPath string) (int, bool, error) {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read pid file %q: %w", pidPath, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false, fmt.Errorf("pid file %q is malformed", pidPath)
	}
	return pid, processAlive(pid), nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 probes for existence without delivering anything.
	return proc.Signal(syscall.Signal(0)) == nil
}

// StopAndTerminate signals the daemon to shut down and escalates to SIGKILL
// if it is still alive after the grace period. The stopped pid is returned.
func StopAndTerminate(pidPath string, grace time.Duration) (int, error) {
	pid, alive, err := ReadPID(pidPath)
	if err != nil {
		return 0, err
	}
	if !alive {
		if pid != 0 {
			_ = os.Remove(pidPath)
		}
		return 0, ErrDaemonNotRunning
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to kill current process (pid %d)", pid)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return 0, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(pidPath)
			return pid, nil
		}
		time.Sleep(200 * time.Millisecond)
	}

	if err := proc.Kill(); err != nil {
		return 0, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	_ = os.Remove(pidPath)
	return pid, nil
}
