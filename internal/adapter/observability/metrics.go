package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ProbeAttemptsTotal counts readiness probes issued against the
	// broker listener, successful or not.
	ProbeAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bootstrap_probe_attempts_total",
			Help: "Total number of broker readiness probes",
		},
	)
	// ProvisionOutcomeTotal counts terminal provisioning outcomes by label
	// (created, already_exists, failed).
	ProvisionOutcomeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootstrap_provision_outcome_total",
			Help: "Total number of topic provisioning outcomes",
		},
		[]string{"outcome"},
	)
	// DaemonExitCode records the broker daemon's exit code once
	// supervision ends.
	DaemonExitCode = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bootstrap_daemon_exit_code",
			Help: "Exit code of the supervised broker daemon",
		},
	)
)

var registerOnce sync.Once

// InitMetrics registers all bootstrap metrics with the default registry.
// Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ProbeAttemptsTotal)
		prometheus.MustRegister(ProvisionOutcomeTotal)
		prometheus.MustRegister(DaemonExitCode)
	})
}
