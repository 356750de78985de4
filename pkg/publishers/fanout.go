package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/samvad-hq/kairos-face-client/internal/logger"
)

// Route binds a publisher to the operations whose results it receives.
type Route struct {
	ID         string
	Type       string
	Operations []string // empty: every operation
	Publisher  Publisher
}

func (r Route) accepts(operation string) bool {
	return len(r.Operations) == 0 || slices.Contains(r.Operations, operation)
}

// Fanout delivers each event to every route that accepts its operation.
type Fanout struct {
	routes []Route
	log    logger.Logger
}

// NewFanout builds a dispatcher over routes. Routes without a publisher are dropped.
func NewFanout(routes []Route, log logger.Logger) *Fanout {
	if log == nil {
		log = &logger.NopLogger{}
	}
	kept := make([]Route, 0, len(routes))
	for _, r := range routes {
		if r.Publisher != nil {
			kept = append(kept, r)
		}
	}
	return &Fanout{routes: kept, log: log}
}

// Publish returns the number of sinks that accepted the event. Failures are
// joined into one error; a sink that filters the operation out is not a failure.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil {
		return 0, nil
	}
	var (
		delivered int
		skipped   []string
		errs      []error
	)
	for _, r := range f.routes {
		if !r.accepts(evt.Operation) {
			skipped = append(skipped, r.ID)
			continue
		}
		if err := r.Publisher.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher %q: %w", r.Type, r.ID, err))
			continue
		}
		delivered++
	}
	if len(skipped) > 0 {
		f.log.DebugObj("sinks not subscribed to operation", "fanout_skip", map[string]any{
			"operation": evt.Operation,
			"skipped":   skipped,
		})
	}
	return delivered, errors.Join(errs...)
}

// Size returns the number of routes.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.routes)
}

// Close releases every publisher that holds a connection.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return closeRoutes(f.routes)
}

func closeRoutes(routes []Route) error {
	var errs []error
	for _, r := range routes {
		if c, ok := r.Publisher.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s publisher %q: %w", r.Type, r.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}
