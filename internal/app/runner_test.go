package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/kairos-face-client/internal/storage"
	"github.com/samvad-hq/kairos-face-client/pkg/kairos"
	"github.com/samvad-hq/kairos-face-client/pkg/manifest"
	"github.com/samvad-hq/kairos-face-client/pkg/publishers"
)

// fakeInvoker records calls and returns a preset response per operation.
type fakeInvoker struct {
	mu      sync.Mutex
	calls   []fakeCall
	resp    map[string]kairos.Response
	errOnOp string
}

type fakeCall struct {
	op   string
	opts kairos.RequestOptions
}

func (f *fakeInvoker) Invoke(_ context.Context, op string, opts kairos.RequestOptions) (kairos.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{op: op, opts: opts})
	if op == f.errOnOp {
		return nil, errors.New("transport down")
	}
	if r, ok := f.resp[op]; ok {
		return r, nil
	}
	return kairos.ParsedJSON{Value: map[string]any{"status": "ok"}}, nil
}

func (f *fakeInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeResolver struct {
	image string
	err   error
}

func (f fakeResolver) Resolve(_ context.Context, _ string) (string, error) {
	return f.image, f.err
}

// fakePublisher records events and can inject errors.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishers.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

// memStore is an in-memory journal.
type memStore struct {
	mu      sync.Mutex
	records []storage.Record
	err     error
}

func (m *memStore) Close() error { return nil }
func (m *memStore) Append(rec storage.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}
func (m *memStore) Recent(int) ([]storage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.Record(nil), m.records...), nil
}

func TestRunJobJournalsAndPublishes(t *testing.T) {
	inv := &fakeInvoker{resp: map[string]kairos.Response{
		"recognize": kairos.ParsedJSON{Value: map[string]any{"images": []any{}}},
	}}
	pub := &fakePublisher{}
	store := &memStore{}
	r := NewRunner(inv, nil, pub, store, nil)
	r.newID = func() string { return "rec-1" }

	job := manifest.Job{
		ID:        "job-1",
		Operation: "recognize",
		Options:   map[string]any{"gallery_name": "g1", "url": "https://x/y.jpg"},
	}
	resp, err := r.RunJob(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := resp.(kairos.ParsedJSON); !ok {
		t.Fatalf("expected parsed json response, got %T", resp)
	}

	if len(store.records) != 1 {
		t.Fatalf("expected 1 journal record, got %d", len(store.records))
	}
	rec := store.records[0]
	if rec.ID != "rec-1" || rec.JobID != "job-1" || rec.Operation != "recognize" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Kind != publishers.KindJSON || rec.Body != `{"images":[]}` {
		t.Fatalf("unexpected record body: kind=%s body=%s", rec.Kind, rec.Body)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	if pub.events[0].GalleryName != "g1" || pub.events[0].JobID != "job-1" || pub.events[0].ID != "rec-1" {
		t.Fatalf("unexpected event: %+v", pub.events[0])
	}
}

func TestRunJobResolvesPageImage(t *testing.T) {
	inv := &fakeInvoker{}
	r := NewRunner(inv, fakeResolver{image: "https://cdn/img.jpg"}, nil, nil, nil)

	job := manifest.Job{ID: "d1", Operation: "detect", Page: "https://news/article"}
	if _, err := r.RunJob(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := inv.calls[0].opts["url"]; got != "https://cdn/img.jpg" {
		t.Fatalf("expected resolved url option, got %v", got)
	}
	if job.Options != nil {
		t.Fatalf("job options must not be mutated")
	}
}

func TestRunJobPageWithoutResolver(t *testing.T) {
	inv := &fakeInvoker{}
	r := NewRunner(inv, nil, nil, nil, nil)

	_, err := r.RunJob(context.Background(), manifest.Job{ID: "d1", Operation: "detect", Page: "https://p"})
	if err == nil || !strings.Contains(err.Error(), "no image resolver") {
		t.Fatalf("expected resolver error, got %v", err)
	}
	if inv.callCount() != 0 {
		t.Fatalf("client must not be called when resolution fails")
	}
}

func TestRunJobResolverFailure(t *testing.T) {
	inv := &fakeInvoker{}
	r := NewRunner(inv, fakeResolver{err: errors.New("no og tags")}, nil, nil, nil)

	_, err := r.RunJob(context.Background(), manifest.Job{ID: "d1", Operation: "detect", Page: "https://p"})
	if err == nil || !strings.Contains(err.Error(), "resolve page image") {
		t.Fatalf("expected resolve error, got %v", err)
	}
}

func TestRunJobRawTextIsJournaledWithSentinel(t *testing.T) {
	inv := &fakeInvoker{resp: map[string]kairos.Response{
		"gallery_list_all": kairos.RawText{Body: "<html>oops</html>"},
	}}
	store := &memStore{}
	r := NewRunner(inv, nil, nil, store, nil)

	if _, err := r.RunJob(context.Background(), manifest.Job{ID: "l", Operation: "gallery_list_all"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := store.records[0]
	if rec.Kind != publishers.KindRawText || rec.Body != "INVALID_JSON: <html>oops</html>" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestRunJobRedactsInlineImage(t *testing.T) {
	store := &memStore{}
	r := NewRunner(&fakeInvoker{}, nil, nil, store, nil)

	job := manifest.Job{
		ID:        "e1",
		Operation: "enroll",
		Options:   map[string]any{"gallery_name": "g", "subject_id": "s", "image": "aGVsbG8="},
	}
	if _, err := r.RunJob(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.records[0].Request["image"]; got != "<8 bytes>" {
		t.Fatalf("expected redacted image, got %v", got)
	}
	if job.Options["image"] != "aGVsbG8=" {
		t.Fatalf("job options must not be mutated")
	}
}

func TestRunJobJournalFailureIsNotFatal(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	pub := &fakePublisher{}
	r := NewRunner(&fakeInvoker{}, nil, pub, store, nil)

	if _, err := r.RunJob(context.Background(), manifest.Job{ID: "l", Operation: "gallery_list_all"}); err != nil {
		t.Fatalf("journal failure should not fail the job: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected event to be published despite journal failure")
	}
}

func TestRunJobPublishFailureReturnsResponse(t *testing.T) {
	pub := &fakePublisher{err: errors.New("sink down")}
	r := NewRunner(&fakeInvoker{}, nil, pub, nil, nil)

	resp, err := r.RunJob(context.Background(), manifest.Job{ID: "l", Operation: "gallery_list_all"})
	if err == nil || !strings.Contains(err.Error(), "publish") {
		t.Fatalf("expected publish error, got %v", err)
	}
	if resp == nil {
		t.Fatalf("expected response alongside publish error")
	}
}

func TestRunAggregatesJobErrors(t *testing.T) {
	inv := &fakeInvoker{errOnOp: "detect"}
	store := &memStore{}
	r := NewRunner(inv, nil, nil, store, nil)

	jobs := []manifest.Job{
		{ID: "a", Operation: "detect", Options: map[string]any{"url": "u"}},
		{ID: "b", Operation: "gallery_list_all"},
		{ID: "c", Operation: "detect", Options: map[string]any{"url": "v"}},
	}
	err := r.Run(context.Background(), jobs)
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if !strings.Contains(err.Error(), "job a") || !strings.Contains(err.Error(), "job c") {
		t.Fatalf("expected both failures in error, got %v", err)
	}
	if inv.callCount() != 3 {
		t.Fatalf("expected all jobs to run, got %d calls", inv.callCount())
	}
	if len(store.records) != 1 || store.records[0].JobID != "b" {
		t.Fatalf("expected only successful job journaled, got %+v", store.records)
	}
}

func TestRunRejectsEmptyJobs(t *testing.T) {
	r := NewRunner(&fakeInvoker{}, nil, nil, nil, nil)
	if err := r.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty job list")
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	inv := &fakeInvoker{}
	r := NewRunner(inv, nil, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx, []manifest.Job{{ID: "a", Operation: "gallery_list_all"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.callCount() != 0 {
		t.Fatalf("expected no calls after cancellation, got %d", inv.callCount())
	}
}

func TestWatchRunsUntilCancelled(t *testing.T) {
	inv := &fakeInvoker{}
	r := NewRunner(inv, nil, nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	if err := r.Watch(ctx, []manifest.Job{{ID: "a", Operation: "gallery_list_all"}}, 20*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := inv.callCount(); n < 2 {
		t.Fatalf("expected initial run plus at least one tick, got %d calls", n)
	}
}

func TestWatchRejectsNonPositiveInterval(t *testing.T) {
	r := NewRunner(&fakeInvoker{}, nil, nil, nil, nil)
	if err := r.Watch(context.Background(), nil, 0); err == nil {
		t.Fatalf("expected interval error")
	}
}
