// Package app wires the bootstrap stages together: launch the broker
// daemon, wait for it to become reachable, provision the declared topic,
// then couple the container's lifetime to the daemon's.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/Kentemie/ordex-bootstrap/internal/adapter/broker"
	"github.com/Kentemie/ordex-bootstrap/internal/adapter/observability"
	"github.com/Kentemie/ordex-bootstrap/internal/domain"
)

// Process is the handle to the launched daemon consumed by the
// supervisor. *broker.Process satisfies it.
type Process interface {
	Wait() (int, error)
	Signal(sig os.Signal) error
	Pid() int
}

// ReadinessWaiter blocks until the broker accepts connections or the
// context is cancelled.
type ReadinessWaiter interface {
	WaitReady(ctx context.Context) error
}

// Supervisor drives the bootstrap sequence. Stages run strictly in
// order; each one starts only after the previous reached a terminal
// outcome.
type Supervisor struct {
	Launch func() (Process, error)
	Waiter ReadinessWaiter
	Admin  domain.TopicAdmin
	Spec   domain.TopicSpec
	// ProvisionTimeout bounds the list-then-create exchange; zero means
	// no deadline beyond the run context.
	ProvisionTimeout time.Duration
}

// Run executes launch, poll, provision, and supervise, returning the
// process exit code for the container. Once the daemon is up it is never
// left running unsupervised: every abort path signals it and waits for
// it to exit before returning. The returned code is the daemon's own
// exit code when supervision began, or domain.ExitSupervisorFailure for
// earlier failures.
func (s *Supervisor) Run(ctx context.Context) (int, error) {
	slog.Info("launching broker daemon")
	proc, err := s.Launch()
	if err != nil {
		return domain.ExitSupervisorFailure, fmt.Errorf("launch: %w", err)
	}

	// Forward external termination to the daemon so it cannot outlive
	// the supervisor.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = proc.Signal(syscall.SIGTERM)
		case <-done:
		}
	}()

	slog.Info("waiting for broker to become reachable")
	if err := s.Waiter.WaitReady(ctx); err != nil {
		s.terminate(proc)
		return domain.ExitSupervisorFailure, fmt.Errorf("readiness: %w", err)
	}

	provisionCtx := ctx
	if s.ProvisionTimeout > 0 {
		var cancel context.CancelFunc
		provisionCtx, cancel = context.WithTimeout(ctx, s.ProvisionTimeout)
		defer cancel()
	}
	result, err := broker.Provision(provisionCtx, s.Admin, s.Spec)
	observability.ProvisionOutcomeTotal.WithLabelValues(result.String()).Inc()
	if err != nil {
		// The daemon can never be correctly provisioned; take it down
		// rather than leave it serving silently.
		s.terminate(proc)
		return domain.ExitSupervisorFailure, fmt.Errorf("provision: %w", err)
	}

	slog.Info("supervising broker daemon",
		slog.Int("pid", proc.Pid()),
		slog.String("provision_outcome", result.String()))
	code, err := proc.Wait()
	if err != nil {
		return domain.ExitSupervisorFailure, fmt.Errorf("supervise: %w", err)
	}
	observability.DaemonExitCode.Set(float64(code))
	slog.Info("broker daemon exited", slog.Int("code", code))
	return code, nil
}

// terminate signals the daemon and reaps it so no abort path leaves an
// orphan behind.
func (s *Supervisor) terminate(proc Process) {
	_ = proc.Signal(syscall.SIGTERM)
	if code, err := proc.Wait(); err == nil {
		slog.Info("broker daemon terminated", slog.Int("code", code))
	}
}
