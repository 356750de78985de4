package kairos

import (
	"testing"
	"time"
)

func TestConfigFromOptionsCopiesRecognizedKeys(t *testing.T) {
	cases := []struct {
		key   string
		value any
		check func(Config) bool
	}{
		{KeyAppID, "1234", func(c Config) bool { return c.AppID == "1234" }},
		{KeyAppKey, "abcde1234", func(c Config) bool { return c.AppKey == "abcde1234" }},
		{KeyBaseURL, "http://localhost:9999", func(c Config) bool { return c.BaseURL == "http://localhost:9999" }},
		{KeyTimeoutSeconds, 3, func(c Config) bool { return c.Timeout == 3*time.Second }},
	}
	for _, tc := range cases {
		cfg := ConfigFromOptions(Options{tc.key: tc.value})
		if !tc.check(cfg) {
			t.Fatalf("key %s: unexpected config %+v", tc.key, cfg)
		}
	}
}

func TestConfigFromOptionsDropsUnknownKeys(t *testing.T) {
	cfg := ConfigFromOptions(Options{"app_id": "x", "color": "blue", "app_secret": "nope"})
	want := Config{AppID: "x", BaseURL: DefaultBaseURL}
	if cfg != want {
		t.Fatalf("got %+v want %+v", cfg, want)
	}
}

func TestConfigFromOptionsCoercesValues(t *testing.T) {
	cfg := ConfigFromOptions(Options{
		KeyAppID:          1234,
		KeyBaseURL:        " https://example.com/ ",
		KeyTimeoutSeconds: "1.5",
	})
	if cfg.AppID != "1234" {
		t.Fatalf("AppID = %q", cfg.AppID)
	}
	if cfg.BaseURL != "https://example.com" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 1500*time.Millisecond {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
	if got := ConfigFromOptions(Options{KeyTimeoutSeconds: "soon"}).Timeout; got != 0 {
		t.Fatalf("expected zero timeout for junk value, got %v", got)
	}
}

func TestMergeOptionsOverridesDefaults(t *testing.T) {
	defaults := Options{KeyAppID: "default-id", KeyAppKey: "default-key"}
	overrides := Options{KeyAppKey: "override-key"}

	merged := MergeOptions(defaults, overrides)
	if merged[KeyAppID] != "default-id" || merged[KeyAppKey] != "override-key" {
		t.Fatalf("unexpected merge %#v", merged)
	}
	if defaults[KeyAppKey] != "default-key" {
		t.Fatalf("defaults mutated: %#v", defaults)
	}
}

func TestNewMergesDefaultsWithOverrides(t *testing.T) {
	c := New(Options{KeyAppID: "env-id", KeyAppKey: "env-key", "junk": true}, Options{KeyAppID: "1234"})
	cfg := c.Config()
	if cfg.AppID != "1234" || cfg.AppKey != "env-key" || cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestConfigURL(t *testing.T) {
	cfg := ConfigFromOptions(DefaultOptions())
	if got := cfg.URL(EndpointGalleryRemoveSubject); got != "https://api.kairos.com/gallery/remove_subject" {
		t.Fatalf("URL = %s", got)
	}
	if got := (Config{}).URL(EndpointEnroll); got != "https://api.kairos.com/enroll" {
		t.Fatalf("zero config URL = %s", got)
	}
}

func TestEndpointByName(t *testing.T) {
	for _, e := range Endpoints() {
		got, ok := EndpointByName(e.Name())
		if !ok || got != e {
			t.Fatalf("EndpointByName(%q) = %q, %v", e.Name(), got, ok)
		}
	}
	if _, ok := EndpointByName("verify"); ok {
		t.Fatalf("expected unknown operation to fail")
	}
}
