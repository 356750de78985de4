package kairos

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Recognized configuration keys. Anything else in an Options mapping is ignored.
const (
	KeyAppID          = "app_id"
	KeyAppKey         = "app_key"
	KeyBaseURL        = "base_url"
	KeyTimeoutSeconds = "timeout_seconds"
)

// DefaultBaseURL is the public Kairos API host.
const DefaultBaseURL = "https://api.kairos.com"

// RecognizedKeys lists every configuration key copied onto a Client.
var RecognizedKeys = []string{KeyAppID, KeyAppKey, KeyBaseURL, KeyTimeoutSeconds}

// Options is a configuration mapping used for defaults and per-client overrides.
type Options map[string]any

// Config is the immutable configuration a Client runs with.
type Config struct {
	AppID   string
	AppKey  string
	BaseURL string
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
}

// DefaultOptions returns the library's built-in defaults.
func DefaultOptions() Options {
	return Options{KeyBaseURL: DefaultBaseURL}
}

// MergeOptions returns a new mapping where keys in overrides replace those in defaults.
// Neither input is modified.
func MergeOptions(defaults, overrides Options) Options {
	merged := make(Options, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// ConfigFromOptions copies the recognized keys out of opts. Unrecognized keys are dropped,
// and an absent or empty base_url falls back to DefaultBaseURL.
func ConfigFromOptions(opts Options) Config {
	cfg := Config{
		AppID:   stringValue(opts[KeyAppID]),
		AppKey:  stringValue(opts[KeyAppKey]),
		BaseURL: strings.TrimRight(strings.TrimSpace(stringValue(opts[KeyBaseURL])), "/"),
		Timeout: durationSeconds(opts[KeyTimeoutSeconds]),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg
}

// URL returns the absolute URL of endpoint under the configured base.
func (c Config) URL(endpoint Endpoint) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return base + endpoint.Path()
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func durationSeconds(v any) time.Duration {
	var secs float64
	switch t := v.(type) {
	case time.Duration:
		return t
	case int:
		secs = float64(t)
	case int32:
		secs = float64(t)
	case int64:
		secs = float64(t)
	case float32:
		secs = float64(t)
	case float64:
		secs = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		secs = parsed
	default:
		return 0
	}
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
