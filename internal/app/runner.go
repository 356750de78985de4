package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/kairos-face-client/internal/logger"
	"github.com/samvad-hq/kairos-face-client/internal/storage"
	"github.com/samvad-hq/kairos-face-client/pkg/kairos"
	"github.com/samvad-hq/kairos-face-client/pkg/manifest"
	"github.com/samvad-hq/kairos-face-client/pkg/publishers"
)

// Invoker dispatches an operation by name; *kairos.Client satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, op string, opts kairos.RequestOptions) (kairos.Response, error)
}

// ImageResolver turns a page URL into an image URL.
type ImageResolver interface {
	Resolve(ctx context.Context, pageURL string) (string, error)
}

// EventPublisher publishes call results downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Runner executes jobs one at a time, journaling and publishing each result.
type Runner struct {
	client    Invoker
	resolver  ImageResolver
	publisher EventPublisher
	store     storage.Store
	log       logger.Logger
	newID     func() string
}

// NewRunner wires a runner. resolver, publisher and store may be nil.
func NewRunner(client Invoker, resolver ImageResolver, publisher EventPublisher, store storage.Store, log logger.Logger) *Runner {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Runner{
		client:    client,
		resolver:  resolver,
		publisher: publisher,
		store:     store,
		log:       log,
		newID:     uuid.NewString,
	}
}

// RunJob performs a single job. A journal failure is logged; a publish failure is
// returned alongside the response.
func (r *Runner) RunJob(ctx context.Context, job manifest.Job) (kairos.Response, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("runner is not initialized")
	}

	opts, err := r.requestOptions(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.ID, err)
	}

	start := time.Now()
	resp, err := r.client.Invoke(ctx, job.Operation, opts)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.ID, err)
	}

	evt := publishers.NewEvent(job.ID, job.Operation, opts, resp)
	evt.ID = r.newID()
	r.log.InfoObj("job completed", "job_result", map[string]any{
		"job_id":     job.ID,
		"operation":  job.Operation,
		"kind":       evt.Kind,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	r.journal(evt.ID, job, opts, evt.Kind, resp)

	if r.publisher != nil {
		if _, err := r.publisher.Publish(ctx, evt); err != nil {
			return resp, fmt.Errorf("job %s publish: %w", job.ID, err)
		}
	}
	return resp, nil
}

// Run executes jobs in order, stopping early if ctx is cancelled.
func (r *Runner) Run(ctx context.Context, jobs []manifest.Job) error {
	if len(jobs) == 0 {
		return fmt.Errorf("no jobs to run")
	}
	return errors.Join(r.runAll(ctx, jobs)...)
}

func (r *Runner) runAll(ctx context.Context, jobs []manifest.Job) []error {
	errs := make([]error, 0, len(jobs))
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return errs
		default:
		}

		if _, err := r.RunJob(ctx, job); err != nil {
			errs = append(errs, err)
			r.log.ErrorObj("job failed", "job_error", map[string]any{
				"job_id":    job.ID,
				"operation": job.Operation,
				"error":     err.Error(),
			})
		}
	}
	return errs
}

// Watch runs jobs immediately and then on every interval tick until ctx is cancelled.
func (r *Runner) Watch(ctx context.Context, jobs []manifest.Job, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}

	r.log.InfoObj("batch loop starting", "batch_state", map[string]any{
		"jobs_count": len(jobs),
		"interval":   interval.String(),
	})

	if err := r.Run(ctx, jobs); err != nil {
		r.log.ErrorObj("initial batch failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("batch loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := r.Run(ctx, jobs); err != nil {
				r.log.ErrorObj("scheduled batch failed", "error", err)
			}
		}
	}
}

func (r *Runner) requestOptions(ctx context.Context, job manifest.Job) (kairos.RequestOptions, error) {
	opts := make(kairos.RequestOptions, len(job.Options)+1)
	for k, v := range job.Options {
		opts[k] = v
	}
	if job.Page == "" {
		return opts, nil
	}
	if r.resolver == nil {
		return nil, fmt.Errorf("page %q given but no image resolver configured", job.Page)
	}
	img, err := r.resolver.Resolve(ctx, job.Page)
	if err != nil {
		return nil, fmt.Errorf("resolve page image: %w", err)
	}
	opts["url"] = img
	return opts, nil
}

// journal records the call under the same id as its published event.
func (r *Runner) journal(id string, job manifest.Job, opts kairos.RequestOptions, kind string, resp kairos.Response) {
	if r.store == nil {
		return
	}
	rec := storage.Record{
		ID:         id,
		JobID:      job.ID,
		Operation:  job.Operation,
		Request:    redactImage(opts),
		Kind:       kind,
		Body:       kairos.Text(resp),
		RecordedAt: time.Now().UTC(),
	}
	if err := r.store.Append(rec); err != nil {
		r.log.WarnObj("journal append failed", "journal_error", map[string]any{
			"job_id": job.ID,
			"error":  err.Error(),
		})
	}
}

// redactImage replaces inline image data with its size so the journal stays small.
func redactImage(opts kairos.RequestOptions) map[string]any {
	out := make(map[string]any, len(opts))
	for k, v := range opts {
		out[k] = v
	}
	if img, ok := out["image"].(string); ok {
		out["image"] = fmt.Sprintf("<%d bytes>", len(img))
	}
	return out
}
