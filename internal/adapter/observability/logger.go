// Package observability provides logging and metrics for the bootstrap
// supervisor.
package observability

import (
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/Kentemie/ordex-bootstrap/internal/config"
)

// SetupLogger configures a JSON slog logger with environment fields.
// Every record carries a run_id so one container start can be traced
// through aggregated logs.
func SetupLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{}
	// In dev, show debug level; in prod, default to info
	if cfg.IsDev() {
		opts.Level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(h).With(
		slog.String("service", "ordex-bootstrap"),
		slog.String("env", cfg.AppEnv),
		slog.String("run_id", uuid.NewString()),
	)
	return logger
}
