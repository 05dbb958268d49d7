package datarequest

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
)

// SubmittedMessage is the Pub/Sub payload announcing a new data request
// to the fulfillment worker.
type SubmittedMessage struct {
	JobType   string `json:"job_type"`
	RequestID string `json:"request_id"`
	StationID string `json:"station_id"`
	Format    string `json:"format"`
}

// JobTypeFulfillRequest identifies fulfillment messages on the worker topic.
const JobTypeFulfillRequest = "fulfill_request"

// PubSubNotifier publishes request announcements to a Pub/Sub topic.
type PubSubNotifier struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
}

// PubSubNotifierConfig holds configuration for the notifier.
type PubSubNotifierConfig struct {
	ProjectID string
	TopicName string
}

// NewPubSubNotifier creates a notifier publishing to the configured topic.
func NewPubSubNotifier(ctx context.Context, cfg PubSubNotifierConfig) (*PubSubNotifier, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubNotifier{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		topicName: cfg.TopicName,
	}, nil
}

// RequestSubmitted publishes a fulfillment message for the request and
// waits for the publish to be acknowledged.
func (n *PubSubNotifier) RequestSubmitted(ctx context.Context, req *Request) error {
	payload, err := json.Marshal(SubmittedMessage{
		JobType:   JobTypeFulfillRequest,
		RequestID: req.ID,
		StationID: req.StationID,
		Format:    string(req.Format),
	})
	if err != nil {
		return fmt.Errorf("encoding fulfillment message: %w", err)
	}

	result := n.publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"job_type": JobTypeFulfillRequest,
		},
	})

	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing to %s: %w", n.topicName, err)
	}
	return nil
}

// Close stops the publisher and releases the client.
func (n *PubSubNotifier) Close() error {
	n.publisher.Stop()
	return n.client.Close()
}
