package broker

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Kentemie/ordex-bootstrap/internal/adapter/observability"
	"github.com/Kentemie/ordex-bootstrap/internal/domain"
)

// Poller waits for the broker listener to accept TCP connections. Each
// probe is a connect-and-close with no payload.
type Poller struct {
	Target   domain.BrokerTarget
	Interval time.Duration
	Timeout  time.Duration

	// dial is swapped out in tests.
	dial func(ctx context.Context) error
}

// NewPoller constructs a Poller probing target every interval, with
// timeout bounding a single connection attempt.
func NewPoller(target domain.BrokerTarget, interval, timeout time.Duration) *Poller {
	p := &Poller{Target: target, Interval: interval, Timeout: timeout}
	p.dial = p.dialTCP
	return p
}

func (p *Poller) dialTCP(ctx context.Context) error {
	d := net.Dialer{Timeout: p.Timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Target.Addr())
	if err != nil {
		return err
	}
	return conn.Close()
}

// WaitReady blocks until one probe succeeds or ctx is cancelled. There
// is no attempt limit: broker startup time is unbounded, so giving up is
// the caller's decision, expressed through ctx. Cancellation takes
// effect promptly, not only between sleep intervals.
func (p *Poller) WaitReady(ctx context.Context) error {
	attempts := 0
	op := func() error {
		attempts++
		observability.ProbeAttemptsTotal.Inc()
		if err := p.dial(ctx); err != nil {
			slog.Debug("broker not reachable yet",
				slog.String("addr", p.Target.Addr()),
				slog.Int("attempts", attempts),
				slog.Any("error", err))
			return err
		}
		return nil
	}
	bo := backoff.WithContext(backoff.NewConstantBackOff(p.Interval), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return fmt.Errorf("wait for %s: %w", p.Target.Addr(), err)
	}
	slog.Info("broker reachable",
		slog.String("addr", p.Target.Addr()),
		slog.Int("attempts", attempts))
	return nil
}
