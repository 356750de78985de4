package publishers

import (
	"context"
	"fmt"

	"github.com/samvad-hq/kairos-face-client/internal/logger"
)

// Publisher delivers a result event to one sink.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type builder func(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error)

var builders = map[string]builder{
	TypeHTTP:   newWebhookPublisher,
	TypeSQS:    newQueuePublisher,
	TypeSNS:    newTopicPublisher,
	TypePubSub: newPubSubPublisher,
}

// Build creates a route for each config, which must come from LoadFile or
// ParseFile. If one sink fails to build, the ones already built are closed.
func Build(ctx context.Context, cfgs []PublisherConfig, log logger.Logger) ([]Route, error) {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	routes := make([]Route, 0, len(cfgs))
	for _, cfg := range cfgs {
		build, ok := builders[cfg.Type]
		if !ok {
			_ = closeRoutes(routes)
			return nil, fmt.Errorf("publisher %q: unsupported type %q", cfg.ID, cfg.Type)
		}
		pub, err := build(ctx, cfg, log)
		if err != nil {
			_ = closeRoutes(routes)
			return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
		}
		routes = append(routes, Route{ID: cfg.ID, Type: cfg.Type, Operations: cfg.Operations, Publisher: pub})
	}
	return routes, nil
}
