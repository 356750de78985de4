// Package manifest loads batch job files (YAML/JSON) for the batch runner.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/kairos-face-client/pkg/kairos"
)

// Job is one API call declared in a manifest.
type Job struct {
	ID        string `json:"id" yaml:"id"`
	Operation string `json:"operation" yaml:"operation"`
	// Page, when set, is resolved to its preview image and sent as "url".
	Page    string         `json:"page" yaml:"page"`
	Options map[string]any `json:"options" yaml:"options"`
	Enabled *bool          `json:"enabled" yaml:"enabled"`
}

// Manifest is an ordered list of jobs.
type Manifest struct {
	Jobs []Job `json:"jobs" yaml:"jobs"`
}

type unmarshalFn func([]byte, any) error

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("manifest path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return Parse(raw, filepath.Ext(path))
}

// Parse decodes and validates manifest content. ext selects the decoder (".yaml", ".yml",
// ".json"); an empty ext tries each in turn.
func Parse(data []byte, ext string) (*Manifest, error) {
	m, err := decode(data, ext)
	if err != nil {
		return nil, err
	}
	if len(m.Jobs) == 0 {
		return nil, errors.New("manifest contains no jobs")
	}

	seen := make(map[string]struct{}, len(m.Jobs))
	for i := range m.Jobs {
		job := sanitizeJob(m.Jobs[i])
		if err := validateJob(job); err != nil {
			return nil, fmt.Errorf("jobs[%d]: %w", i, err)
		}
		if _, exists := seen[job.ID]; exists {
			return nil, fmt.Errorf("duplicate job id %q", job.ID)
		}
		seen[job.ID] = struct{}{}
		m.Jobs[i] = job
	}
	return &m, nil
}

func decode(data []byte, ext string) (Manifest, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var m Manifest
		if err := d.fn(data, &m); err == nil {
			return m, nil
		}
	}
	return Manifest{}, errors.New("manifest format not recognized (expected YAML or JSON)")
}

func sanitizeJob(j Job) Job {
	j.ID = strings.TrimSpace(j.ID)
	j.Operation = strings.ToLower(strings.TrimSpace(j.Operation))
	j.Page = strings.TrimSpace(j.Page)
	if j.Options == nil {
		j.Options = map[string]any{}
	}
	if j.Enabled == nil {
		def := true
		j.Enabled = &def
	}
	return j
}

func validateJob(j Job) error {
	if j.ID == "" {
		return errors.New("id is required")
	}
	if j.Operation == "" {
		return fmt.Errorf("operation is required for job %q", j.ID)
	}
	endpoint, ok := kairos.EndpointByName(j.Operation)
	if !ok {
		return fmt.Errorf("unknown operation %q for job %q", j.Operation, j.ID)
	}
	if endpoint == kairos.EndpointGalleryListAll && (len(j.Options) > 0 || j.Page != "") {
		return fmt.Errorf("job %q: gallery_list_all takes no options", j.ID)
	}
	if j.Page != "" {
		if _, hasURL := j.Options["url"]; hasURL {
			return fmt.Errorf("job %q: page and options.url are mutually exclusive", j.ID)
		}
	}
	return nil
}

// EnabledValue returns enabled flag defaulting to true.
func (j Job) EnabledValue() bool {
	if j.Enabled == nil {
		return true
	}
	return *j.Enabled
}

// Enabled returns the jobs that are enabled, in file order.
func (m *Manifest) Enabled() []Job {
	if m == nil {
		return nil
	}
	out := make([]Job, 0, len(m.Jobs))
	for _, j := range m.Jobs {
		if j.EnabledValue() {
			out = append(out, j)
		}
	}
	return out
}
