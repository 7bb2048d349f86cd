// Package broker starts the Kafka daemon, probes it for readiness, and
// talks to its administrative API.
//
// The package owns the full bootstrap surface of the broker: spawning
// the daemon process, waiting for its listener to accept connections,
// and ensuring the declared topic exists before supervision begins.
package broker

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
)

// Process is a handle to the launched broker daemon. It is created by
// Launch and consumed by the supervisor's Wait/Signal calls.
type Process struct {
	cmd *exec.Cmd
}

// Launch starts the broker command in the background and returns
// immediately with a handle to the running process. The daemon inherits
// the supervisor's stdout and stderr so its logs reach the container
// runtime unchanged.
//
// The daemon runs in its own process group so that Signal can reach
// every descendant of a wrapper start script, not just the script
// itself. A terminal Ctrl-C therefore does not reach the daemon through
// the foreground group; the supervisor's signal forwarding is the only
// delivery path.
func Launch(command string, args ...string) (*Process, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start broker %q: %w", command, err)
	}
	slog.Info("broker daemon started",
		slog.String("command", command),
		slog.Int("pid", cmd.Process.Pid))
	return &Process{cmd: cmd}, nil
}

// Pid returns the daemon's OS process ID.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// Wait blocks until the daemon exits and returns its exit code. A daemon
// killed by a signal maps to 128+signum, matching shell convention, so
// outer lifecycle managers observe the usual code for e.g. SIGTERM.
func (p *Process) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("wait broker: %w", err)
}

// Signal forwards sig to the daemon's whole process group, so wrapper
// scripts and the processes they spawn all receive it.
func (p *Process) Signal(sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return p.cmd.Process.Signal(sig)
	}
	return syscall.Kill(-p.cmd.Process.Pid, s)
}
