// Package domain defines the core entities and error taxonomy for the
// bootstrap supervisor. It has no external dependencies.
package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
)

// Error taxonomy (sentinels)
var (
	// ErrInvalidSpec marks a topic spec that can never be provisioned
	// (empty name, non-positive partitions or replication factor).
	ErrInvalidSpec = errors.New("invalid topic spec")
	// ErrTopicExists marks a create request that lost the race to another
	// creator. Callers treat it as success, not failure.
	ErrTopicExists = errors.New("topic already exists")
)

// ExitSupervisorFailure is the process exit code for failures that occur
// before the daemon reports its own status (bad config, spawn failure,
// provisioning failure). It is deliberately outside the range of codes
// the daemon itself commonly uses.
const ExitSupervisorFailure = 125

// BrokerTarget identifies the broker listener to probe for readiness.
type BrokerTarget struct {
	Host string
	Port int
}

// Addr returns the target in host:port form.
func (t BrokerTarget) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// TopicSpec describes the topic that must exist before dependent
// services can publish or subscribe.
type TopicSpec struct {
	Name              string
	Partitions        int32
	ReplicationFactor int16
}

// Validate reports whether the spec can be sent to the broker at all.
func (s TopicSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: topic name cannot be empty", ErrInvalidSpec)
	}
	if s.Partitions <= 0 {
		return fmt.Errorf("%w: partitions must be greater than 0", ErrInvalidSpec)
	}
	if s.ReplicationFactor <= 0 {
		return fmt.Errorf("%w: replication factor must be greater than 0", ErrInvalidSpec)
	}
	return nil
}

// ProvisionResult is the terminal outcome of one provisioning attempt.
type ProvisionResult int

const (
	ProvisionFailed ProvisionResult = iota
	ProvisionCreated
	ProvisionAlreadyExists
)

// String returns the outcome label used in logs and metrics.
func (r ProvisionResult) String() string {
	switch r {
	case ProvisionCreated:
		return "created"
	case ProvisionAlreadyExists:
		return "already_exists"
	default:
		return "failed"
	}
}

// TopicAdmin is the minimal administrative surface of the broker used by
// the provisioner. CreateTopic returns an error wrapping ErrTopicExists
// when the broker rejects the request because the topic is present.
type TopicAdmin interface {
	ListTopics(ctx context.Context) (map[string]struct{}, error)
	CreateTopic(ctx context.Context, spec TopicSpec) error
}
