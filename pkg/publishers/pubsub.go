package publishers

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/samvad-hq/kairos-face-client/internal/logger"
)

// pubsubPublisher publishes results to a Pub/Sub topic and waits for the server ack.
// PUBSUB_EMULATOR_HOST is honoured by the underlying client.
type pubsubPublisher struct {
	id      string
	client  *pubsub.Client
	topic   *pubsub.Topic
	ordered bool
	log     logger.Logger
}

func newPubSubPublisher(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic := client.Topic(cfg.PubSub.Topic)
	topic.EnableMessageOrdering = cfg.PubSub.OrderByGallery
	return &pubsubPublisher{
		id:      cfg.ID,
		client:  client,
		topic:   topic,
		ordered: cfg.PubSub.OrderByGallery,
		log:     log,
	}, nil
}

func (p *pubsubPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := evt.payload()
	if err != nil {
		return err
	}
	msg := &pubsub.Message{Data: data, Attributes: evt.Attributes()}
	if p.ordered {
		msg.OrderingKey = evt.groupKey()
	}

	msgID, err := p.topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		if p.ordered {
			// A failed ordered publish pauses the key until resumed.
			p.topic.ResumePublish(msg.OrderingKey)
		}
		return fmt.Errorf("pubsub publish to %s: %w", p.topic.ID(), err)
	}
	p.log.DebugObj("result published", "pubsub_delivery", map[string]any{
		"publisher_id": p.id,
		"operation":    evt.Operation,
		"message_id":   msgID,
	})
	return nil
}

// Close flushes pending messages and releases the client.
func (p *pubsubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
