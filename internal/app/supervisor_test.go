package app

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kentemie/ordex-bootstrap/internal/adapter/broker"
	"github.com/Kentemie/ordex-bootstrap/internal/domain"
)

type fakeAdmin struct {
	topics      map[string]struct{}
	createErr   error
	listCalls   int
	createCalls int
	created     []domain.TopicSpec
}

func (f *fakeAdmin) ListTopics(context.Context) (map[string]struct{}, error) {
	f.listCalls++
	return f.topics, nil
}

func (f *fakeAdmin) CreateTopic(_ context.Context, spec domain.TopicSpec) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, spec)
	return nil
}

type readyWaiter struct{ calls int }

func (w *readyWaiter) WaitReady(context.Context) error {
	w.calls++
	return nil
}

var ordexSpec = domain.TopicSpec{Name: "ordex", Partitions: 3, ReplicationFactor: 1}

func launchShell(script string) func() (Process, error) {
	return func() (Process, error) {
		return broker.Launch("sh", "-c", script)
	}
}

func Test_Run_HappyPath(t *testing.T) {
	// Daemon unreachable at first; the listener comes up while the
	// poller is already running, then the daemon exits 0 on its own.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	late := make(chan net.Listener, 1)
	go func() {
		time.Sleep(50 * time.Millisecond)
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			t.Errorf("late listen: %v", err)
		}
		late <- ln
	}()
	defer func() {
		if ln := <-late; ln != nil {
			_ = ln.Close()
		}
	}()

	admin := &fakeAdmin{}
	sup := &Supervisor{
		Launch: launchShell("sleep 0.3; exit 0"),
		Waiter: broker.NewPoller(domain.BrokerTarget{Host: "127.0.0.1", Port: port}, 10*time.Millisecond, time.Second),
		Admin:  admin,
		Spec:   ordexSpec,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	code, err := sup.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	require.Len(t, admin.created, 1)
	assert.Equal(t, ordexSpec, admin.created[0])
}

func Test_Run_SpawnFailure(t *testing.T) {
	waiter := &readyWaiter{}
	admin := &fakeAdmin{}
	sup := &Supervisor{
		Launch: func() (Process, error) {
			return broker.Launch("/nonexistent/kafka-server-start.sh")
		},
		Waiter: waiter,
		Admin:  admin,
		Spec:   ordexSpec,
	}

	code, err := sup.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.ExitSupervisorFailure, code)
	// Neither polling nor provisioning may run after a failed spawn.
	assert.Equal(t, 0, waiter.calls)
	assert.Equal(t, 0, admin.listCalls)
	assert.Equal(t, 0, admin.createCalls)
}

func Test_Run_TopicAlreadyPresent(t *testing.T) {
	admin := &fakeAdmin{topics: map[string]struct{}{"ordex": {}}}
	sup := &Supervisor{
		Launch: launchShell("exit 0"),
		Waiter: &readyWaiter{},
		Admin:  admin,
		Spec:   ordexSpec,
	}

	code, err := sup.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 0, admin.createCalls, "no create call when topic exists")
}

func Test_Run_PropagatesDaemonExitCode(t *testing.T) {
	sup := &Supervisor{
		Launch: launchShell("exit 7"),
		Waiter: &readyWaiter{},
		Admin:  &fakeAdmin{},
		Spec:   ordexSpec,
	}

	code, err := sup.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func Test_Run_ProvisionFailureTerminatesDaemon(t *testing.T) {
	admin := &fakeAdmin{createErr: fmt.Errorf("invalid replication factor (code 38)")}
	sup := &Supervisor{
		Launch: launchShell("sleep 60"),
		Waiter: &readyWaiter{},
		Admin:  admin,
		Spec:   ordexSpec,
	}

	start := time.Now()
	code, err := sup.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.ExitSupervisorFailure, code)
	// The daemon must be taken down rather than left running for the
	// remaining sleep.
	assert.Less(t, time.Since(start), 10*time.Second)
}

func Test_Run_ConcurrentCreatorRaceIsNotFatal(t *testing.T) {
	admin := &fakeAdmin{createErr: fmt.Errorf("ordex: %w", domain.ErrTopicExists)}
	sup := &Supervisor{
		Launch: launchShell("exit 0"),
		Waiter: &readyWaiter{},
		Admin:  admin,
		Spec:   ordexSpec,
	}

	code, err := sup.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func Test_Run_CancellationForwardsToDaemon(t *testing.T) {
	sup := &Supervisor{
		Launch: launchShell("sleep 60"),
		Waiter: &readyWaiter{},
		Admin:  &fakeAdmin{},
		Spec:   ordexSpec,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		code, _ := sup.Run(ctx)
		done <- code
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		// sh forwards SIGTERM semantics: 128+15.
		assert.Equal(t, 143, code)
	case <-time.After(10 * time.Second):
		t.Fatal("supervisor did not exit after cancellation")
	}
}
