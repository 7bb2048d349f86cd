// Package main provides the ordex bootstrap supervisor entry point.
// It starts the Kafka daemon, waits for its listener to accept
// connections, ensures the ordex topic exists, and then ties the
// container's lifetime to the daemon's: the process exits if and only
// if the daemon exits, with the daemon's status.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kentemie/ordex-bootstrap/internal/adapter/broker"
	"github.com/Kentemie/ordex-bootstrap/internal/adapter/observability"
	"github.com/Kentemie/ordex-bootstrap/internal/app"
	"github.com/Kentemie/ordex-bootstrap/internal/config"
	"github.com/Kentemie/ordex-bootstrap/internal/domain"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		return domain.ExitSupervisorFailure
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				slog.Error("metrics server error", slog.Any("error", err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	admin, err := broker.NewAdmin([]string{cfg.BrokerTarget().Addr()})
	if err != nil {
		slog.Error("kafka admin init failed", slog.Any("error", err))
		return domain.ExitSupervisorFailure
	}
	defer admin.Close()

	sup := &app.Supervisor{
		Launch: func() (app.Process, error) {
			return broker.Launch(cfg.BrokerCommand, cfg.BrokerArgs...)
		},
		Waiter:           broker.NewPoller(cfg.BrokerTarget(), cfg.ProbeInterval, cfg.ProbeTimeout),
		Admin:            admin,
		Spec:             cfg.TopicSpec(),
		ProvisionTimeout: cfg.ProvisionTimeout,
	}

	code, err := sup.Run(ctx)
	if err != nil {
		slog.Error("bootstrap failed", slog.Any("error", err))
	}
	return code
}
