package broker

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/Kentemie/ordex-bootstrap/internal/domain"
)

// Admin implements domain.TopicAdmin over a franz-go client.
type Admin struct {
	client *kgo.Client
}

// NewAdmin constructs an Admin connected to the given seed brokers.
func NewAdmin(brokers []string) (*Admin, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequestRetries(10),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Admin{client: client}, nil
}

// Close releases the underlying client connections.
func (a *Admin) Close() { a.client.Close() }

// ListTopics returns the names of all topics known to the broker.
func (a *Admin) ListTopics(ctx context.Context) (map[string]struct{}, error) {
	req := kmsg.NewMetadataRequest()
	resp, err := a.client.Request(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("metadata request: %w", err)
	}
	metaResp, ok := resp.(*kmsg.MetadataResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", resp)
	}
	names := make(map[string]struct{}, len(metaResp.Topics))
	for _, t := range metaResp.Topics {
		if t.Topic != nil {
			names[*t.Topic] = struct{}{}
		}
	}
	return names, nil
}

// CreateTopic issues a single CreateTopics request for spec. A broker
// rejection with error code 36 (TOPIC_ALREADY_EXISTS, see
// https://kafka.apache.org/protocol#protocol_error_codes) is surfaced as
// domain.ErrTopicExists so callers can treat the race as success.
func (a *Admin) CreateTopic(ctx context.Context, spec domain.TopicSpec) error {
	req := kmsg.NewCreateTopicsRequest()
	req.TimeoutMillis = 30000

	topicReq := kmsg.NewCreateTopicsRequestTopic()
	topicReq.Topic = spec.Name
	topicReq.NumPartitions = spec.Partitions
	topicReq.ReplicationFactor = spec.ReplicationFactor
	req.Topics = append(req.Topics, topicReq)

	resp, err := a.client.Request(ctx, &req)
	if err != nil {
		return fmt.Errorf("create topics request: %w", err)
	}
	createResp, ok := resp.(*kmsg.CreateTopicsResponse)
	if !ok {
		return fmt.Errorf("unexpected response type: %T", resp)
	}

	for _, topicResp := range createResp.Topics {
		if topicResp.ErrorCode == 0 {
			continue
		}
		if topicResp.ErrorCode == 36 {
			return fmt.Errorf("%s: %w", topicResp.Topic, domain.ErrTopicExists)
		}
		errorMsg := ""
		if topicResp.ErrorMessage != nil {
			errorMsg = *topicResp.ErrorMessage
		}
		return fmt.Errorf("create topic %s: %s (code %d)", topicResp.Topic, errorMsg, topicResp.ErrorCode)
	}
	return nil
}
