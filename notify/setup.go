// notify/setup.go
package notify

import (
	"context"
	"fmt"
	"net/http"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/gewnthar/cragbook/config"
	"github.com/gewnthar/cragbook/log"
)

// FromConfig builds the notifier chain described by cfg. The structured log
// always receives a copy. The returned close function releases the Pub/Sub
// client, if any.
func FromConfig(ctx context.Context, cfg config.NotifyConfig, opts ...option.ClientOption) (Notifier, func() error, error) {
	chain := Multi{LogNotifier{Logger: log.WithComponent("notify")}}
	closeFn := func() error { return nil }

	if cfg.WebhookURL != "" {
		chain = append(chain, NewWebhookNotifier(cfg.WebhookURL, &http.Client{Timeout: cfg.Timeout}))
	}

	if cfg.PubSubTopic != "" {
		client, err := pubsub.NewClient(ctx, cfg.PubSubProject, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pubsub client: %w", err)
		}
		topic := client.Topic(cfg.PubSubTopic)
		publisher, err := NewPubSubNotifier(topic)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		chain = append(chain, publisher)
		closeFn = func() error {
			topic.Stop()
			return client.Close()
		}
	}

	return chain, closeFn, nil
}
