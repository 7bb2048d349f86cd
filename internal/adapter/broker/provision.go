package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Kentemie/ordex-bootstrap/internal/domain"
)

// Provision ensures spec.Name exists on the broker, creating it with the
// declared partition count and replication factor only when absent.
// Existence-check and create form one logical operation: a create that
// loses the race to a concurrent creator reports ProvisionAlreadyExists,
// not an error. Any other failure is terminal; there is no retry loop
// for the create step.
func Provision(ctx context.Context, admin domain.TopicAdmin, spec domain.TopicSpec) (domain.ProvisionResult, error) {
	if err := spec.Validate(); err != nil {
		return domain.ProvisionFailed, err
	}

	topics, err := admin.ListTopics(ctx)
	if err != nil {
		return domain.ProvisionFailed, fmt.Errorf("list topics: %w", err)
	}
	if _, ok := topics[spec.Name]; ok {
		slog.Info("topic already exists", slog.String("topic", spec.Name))
		return domain.ProvisionAlreadyExists, nil
	}

	slog.Info("creating topic",
		slog.String("topic", spec.Name),
		slog.Int("partitions", int(spec.Partitions)),
		slog.Int("replication_factor", int(spec.ReplicationFactor)))
	if err := admin.CreateTopic(ctx, spec); err != nil {
		if errors.Is(err, domain.ErrTopicExists) {
			slog.Info("topic created concurrently by another actor",
				slog.String("topic", spec.Name))
			return domain.ProvisionAlreadyExists, nil
		}
		return domain.ProvisionFailed, fmt.Errorf("create topic: %w", err)
	}

	slog.Info("topic created",
		slog.String("topic", spec.Name),
		slog.Int("partitions", int(spec.Partitions)),
		slog.Int("replication_factor", int(spec.ReplicationFactor)))
	return domain.ProvisionCreated, nil
}
