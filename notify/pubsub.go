// notify/pubsub.go
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// Event names carried in the "event" message attribute.
const (
	EventSyncSummary = "route_sync.summary"
	EventSyncSkipped = "route_sync.skipped"
)

// PubSubNotifier publishes sync events to a Pub/Sub topic for downstream
// consumers such as the activity feed.
type PubSubNotifier struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

func NewPubSubNotifier(topic *pubsub.Topic) (*PubSubNotifier, error) {
	if topic == nil {
		return nil, errors.New("pubsub notifier: topic is required")
	}
	return &PubSubNotifier{topic: topic, marshal: json.Marshal}, nil
}

func (n *PubSubNotifier) SyncSummary(ctx context.Context, s SyncSummary) error {
	return n.publish(ctx, EventSyncSummary, s.RunID, s)
}

func (n *PubSubNotifier) SyncSkipped(ctx context.Context, s SyncSkipped) error {
	return n.publish(ctx, EventSyncSkipped, s.RunID, s)
}

func (n *PubSubNotifier) publish(ctx context.Context, event, runID string, payload any) error {
	data, err := n.marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}

	attrs := map[string]string{"event": event}
	if runID != "" {
		attrs["runId"] = runID
	}

	result := n.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish %s event: %w", event, err)
	}
	return nil
}
