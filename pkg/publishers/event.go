package publishers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/kairos-face-client/pkg/kairos"
)

// Result kinds carried by an Event.
const (
	KindJSON    = "json"
	KindRawText = "raw_text"
)

// Event represents an API call result published downstream.
type Event struct {
	ID          string    `json:"id,omitempty"`
	JobID       string    `json:"job_id,omitempty"`
	Operation   string    `json:"operation"`
	GalleryName string    `json:"gallery_name,omitempty"`
	SubjectID   string    `json:"subject_id,omitempty"`
	Kind        string    `json:"kind"`
	Result      any       `json:"result"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewEvent constructs an Event for the given call and its response.
// Result holds the parsed JSON value, or the raw body for non-JSON responses.
func NewEvent(jobID, operation string, opts kairos.RequestOptions, resp kairos.Response) Event {
	evt := Event{
		JobID:       jobID,
		Operation:   operation,
		GalleryName: stringOption(opts, "gallery_name"),
		SubjectID:   stringOption(opts, "subject_id"),
		CompletedAt: time.Now().UTC(),
	}
	switch r := resp.(type) {
	case kairos.ParsedJSON:
		evt.Kind = KindJSON
		evt.Result = r.Value
	case kairos.RawText:
		evt.Kind = KindRawText
		evt.Result = r.Body
	}
	return evt
}

// Attributes returns the metadata attached to every delivered message, so
// consumers can filter on operation or gallery without parsing the body.
// Empty values are left out.
func (e Event) Attributes() map[string]string {
	attrs := make(map[string]string, 5)
	for key, val := range map[string]string{
		"operation":    e.Operation,
		"kind":         e.Kind,
		"gallery_name": e.GalleryName,
		"subject_id":   e.SubjectID,
		"job_id":       e.JobID,
	} {
		if val != "" {
			attrs[key] = val
		}
	}
	return attrs
}

// groupKey keeps results for one gallery in order on FIFO queues and ordered topics.
// Calls without a gallery are grouped by operation.
func (e Event) groupKey() string {
	if e.GalleryName != "" {
		return "gallery:" + e.GalleryName
	}
	return "operation:" + e.Operation
}

// dedupID identifies the event for FIFO deduplication.
func (e Event) dedupID() string {
	if e.ID != "" {
		return e.ID
	}
	return uuid.NewString()
}

func (e Event) payload() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", e.Operation, err)
	}
	return raw, nil
}

func stringOption(opts kairos.RequestOptions, key string) string {
	if v, ok := opts[key].(string); ok {
		return v
	}
	return ""
}
