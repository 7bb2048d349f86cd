// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"

	"github.com/Kentemie/ordex-bootstrap/internal/domain"
)

// Config holds all supervisor configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	// Broker listener probed for readiness and used for admin requests.
	BrokerHost string `env:"KAFKA_HOST" envDefault:"localhost" validate:"required,hostname_rfc1123"`
	BrokerPort int    `env:"KAFKA_PORT" envDefault:"9092" validate:"min=1,max=65535"`
	// Topic provisioned once at startup.
	Topic             string `env:"KAFKA_TOPIC,notEmpty" envDefault:"ordex" validate:"required"`
	Partitions        int32  `env:"KAFKA_PARTITIONS" envDefault:"3" validate:"min=1"`
	ReplicationFactor int16  `env:"KAFKA_REPLICATION_FACTOR" envDefault:"1" validate:"min=1"`
	// Command that starts the broker daemon. Args are space-separated.
	BrokerCommand string   `env:"BROKER_CMD,notEmpty" envDefault:"/opt/kafka/bin/kafka-server-start.sh" validate:"required"`
	BrokerArgs    []string `env:"BROKER_ARGS" envSeparator:" " envDefault:"/opt/kafka/config/server.properties"`
	// ProbeInterval is the fixed delay between readiness probes;
	// ProbeTimeout bounds a single connection attempt.
	ProbeInterval time.Duration `env:"PROBE_INTERVAL" envDefault:"1s" validate:"gt=0"`
	ProbeTimeout  time.Duration `env:"PROBE_TIMEOUT" envDefault:"2s" validate:"gt=0"`
	// ProvisionTimeout bounds the whole list-then-create exchange.
	ProvisionTimeout time.Duration `env:"PROVISION_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	// MetricsAddr enables a /metrics listener when non-empty, e.g. ":9090".
	MetricsAddr string `env:"METRICS_ADDR"`
}

var validate = validator.New()

// Load parses environment variables into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Validate: %w", err)
	}
	return cfg, nil
}

// BrokerTarget returns the listener endpoint the poller waits on.
func (c Config) BrokerTarget() domain.BrokerTarget {
	return domain.BrokerTarget{Host: c.BrokerHost, Port: c.BrokerPort}
}

// TopicSpec returns the declared topic to provision.
func (c Config) TopicSpec() domain.TopicSpec {
	return domain.TopicSpec{
		Name:              c.Topic,
		Partitions:        c.Partitions,
		ReplicationFactor: c.ReplicationFactor,
	}
}

// IsDev reports whether the supervisor is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the supervisor is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }
