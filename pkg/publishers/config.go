package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/kairos-face-client/pkg/kairos"
)

// Publisher types understood by Build.
const (
	TypeHTTP   = "http"
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
)

const defaultWebhookTimeoutSeconds = 5

// File is a decoded publishers file.
type File struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig declares one result sink.
type PublisherConfig struct {
	ID      string `json:"id" yaml:"id"`
	Type    string `json:"type" yaml:"type"`
	Enabled *bool  `json:"enabled" yaml:"enabled"`
	// Operations restricts the sink to these operation names (enroll, gallery_view, ...).
	// Empty means every operation.
	Operations []string `json:"operations" yaml:"operations"`

	HTTP   *WebhookConfig `json:"http" yaml:"http"`
	SQS    *QueueConfig   `json:"sqs" yaml:"sqs"`
	SNS    *TopicConfig   `json:"sns" yaml:"sns"`
	PubSub *PubSubConfig  `json:"pubsub" yaml:"pubsub"`
}

// WebhookConfig posts each result to a URL.
type WebhookConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// QueueConfig sends results to an SQS queue. A queue URL ending in ".fifo" is
// treated as a FIFO queue.
type QueueConfig struct {
	QueueURL  string `json:"uri" yaml:"uri"`
	AWSAccess `yaml:",inline"`
}

// TopicConfig publishes results to an SNS topic. A topic ARN ending in ".fifo"
// is treated as a FIFO topic.
type TopicConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	AWSAccess `yaml:",inline"`
}

// PubSubConfig publishes results to a Google Cloud Pub/Sub topic.
type PubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	// OrderByGallery sets an ordering key so results for one gallery arrive in order.
	OrderByGallery bool `json:"order_by_gallery" yaml:"order_by_gallery"`
}

// LoadFile reads a publishers file. ".json" files are decoded as JSON, anything
// else as YAML. Every entry is normalized and checked, disabled ones included.
func LoadFile(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}
	return ParseFile(raw, filepath.Ext(path))
}

// ParseFile decodes and checks publishers file content.
func ParseFile(raw []byte, ext string) (*File, error) {
	var f File
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("decode json publishers: %w", err)
		}
	} else if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode yaml publishers: %w", err)
	}
	if len(f.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	seen := make(map[string]bool, len(f.Publishers))
	for i, entry := range f.Publishers {
		cfg, err := entry.resolve()
		if err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if seen[cfg.ID] {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		seen[cfg.ID] = true
		f.Publishers[i] = cfg
	}
	return &f, nil
}

// Enabled returns the entries that are not switched off.
func (f *File) Enabled() []PublisherConfig {
	if f == nil {
		return nil
	}
	out := make([]PublisherConfig, 0, len(f.Publishers))
	for _, cfg := range f.Publishers {
		if cfg.Enabled == nil || *cfg.Enabled {
			out = append(out, cfg)
		}
	}
	return out
}

// resolve trims the entry, canonicalizes its operation filter and checks the
// settings its type needs.
func (c PublisherConfig) resolve() (PublisherConfig, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if c.ID == "" {
		return c, errors.New("id is required")
	}
	required := func(field string) error {
		return fmt.Errorf("publisher %q: %s is required", c.ID, field)
	}

	ops := make([]string, 0, len(c.Operations))
	for _, name := range c.Operations {
		endpoint, ok := kairos.EndpointByName(name)
		if !ok {
			return c, fmt.Errorf("publisher %q: unknown operation %q", c.ID, name)
		}
		if !slices.Contains(ops, endpoint.Name()) {
			ops = append(ops, endpoint.Name())
		}
	}
	c.Operations = ops

	switch c.Type {
	case TypeHTTP:
		if c.HTTP == nil {
			return c, required("http.url")
		}
		hook := *c.HTTP
		trimFields(&hook.URL, &hook.Method)
		if hook.URL == "" {
			return c, required("http.url")
		}
		hook.Method = strings.ToUpper(hook.Method)
		if hook.Method == "" {
			hook.Method = "POST"
		}
		if hook.TimeoutSeconds <= 0 {
			hook.TimeoutSeconds = defaultWebhookTimeoutSeconds
		}
		hook.Headers = cleanHeaders(hook.Headers)
		c.HTTP = &hook
	case TypeSQS:
		if c.SQS == nil {
			return c, required("sqs.uri")
		}
		q := *c.SQS
		trimFields(&q.QueueURL)
		if q.QueueURL == "" {
			return c, required("sqs.uri")
		}
		if err := q.AWSAccess.check(); err != nil {
			return c, fmt.Errorf("publisher %q: sqs.%w", c.ID, err)
		}
		c.SQS = &q
	case TypeSNS:
		if c.SNS == nil {
			return c, required("sns.topic_arn")
		}
		t := *c.SNS
		trimFields(&t.TopicARN)
		if t.TopicARN == "" {
			return c, required("sns.topic_arn")
		}
		if err := t.AWSAccess.check(); err != nil {
			return c, fmt.Errorf("publisher %q: sns.%w", c.ID, err)
		}
		c.SNS = &t
	case TypePubSub:
		if c.PubSub == nil {
			return c, required("pubsub.project_id")
		}
		ps := *c.PubSub
		trimFields(&ps.ProjectID, &ps.Topic, &ps.CredentialsFile)
		if ps.ProjectID == "" || ps.Topic == "" {
			return c, required("pubsub.project_id and pubsub.topic")
		}
		c.PubSub = &ps
	case "":
		return c, fmt.Errorf("publisher %q: type is required", c.ID)
	default:
		return c, fmt.Errorf("publisher %q: unsupported type %q", c.ID, c.Type)
	}
	return c, nil
}

func trimFields(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

func cleanHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
