// Package kairos is a client for the Kairos face recognition API.
//
// Every operation is a single synchronous JSON POST authenticated with the
// app_id and app_key headers. Response bodies that are not JSON are returned
// as RawText rather than as an error.
package kairos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samvad-hq/kairos-face-client/pkg/httpclient"
)

// Client calls the Face API. It is safe for concurrent use.
type Client struct {
	cfg  Config
	http httpclient.Client
	log  Logger
}

// Option customizes a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the default resty-backed transport.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger routes per-call debug logs to log.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New builds a Client from defaults merged with overrides. Only recognized keys are kept.
// Pass DefaultOptions() (or a config-derived mapping) as defaults.
func New(defaults, overrides Options, opts ...Option) *Client {
	return NewWithConfig(ConfigFromOptions(MergeOptions(defaults, overrides)), opts...)
}

// NewWithConfig builds a Client from an already resolved Config.
func NewWithConfig(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	c := &Client{cfg: cfg, log: noopLogger{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(cfg.Timeout)
	}
	return c
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config { return c.cfg }

// Enroll registers a face image under a subject in a gallery.
//
//	client.Enroll(ctx, kairos.RequestOptions{"url": "https://example.com/a.jpg", "subject_id": "gemtest", "gallery_name": "testgallery"})
func (c *Client) Enroll(ctx context.Context, opts RequestOptions) (Response, error) {
	return c.postToAPI(ctx, EndpointEnroll, opts)
}

// Recognize matches a face image against a gallery. Optional keys: threshold, max_num_results.
func (c *Client) Recognize(ctx context.Context, opts RequestOptions) (Response, error) {
	return c.postToAPI(ctx, EndpointRecognize, opts)
}

// GalleryRemoveSubject removes a subject from a gallery.
func (c *Client) GalleryRemoveSubject(ctx context.Context, opts RequestOptions) (Response, error) {
	return c.postToAPI(ctx, EndpointGalleryRemoveSubject, opts)
}

// Detect finds faces in an image. Optional key: selector.
func (c *Client) Detect(ctx context.Context, opts RequestOptions) (Response, error) {
	return c.postToAPI(ctx, EndpointDetect, opts)
}

// GalleryListAll lists every gallery. It always sends an empty body.
func (c *Client) GalleryListAll(ctx context.Context) (Response, error) {
	return c.postToAPI(ctx, EndpointGalleryListAll, nil)
}

// GalleryView lists the subjects enrolled in a gallery.
func (c *Client) GalleryView(ctx context.Context, opts RequestOptions) (Response, error) {
	return c.postToAPI(ctx, EndpointGalleryView, opts)
}

// Invoke dispatches to the operation named op (see Endpoint.Name).
// Options passed to gallery_list_all are ignored.
func (c *Client) Invoke(ctx context.Context, op string, opts RequestOptions) (Response, error) {
	endpoint, ok := EndpointByName(op)
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", op)
	}
	if endpoint == EndpointGalleryListAll {
		return c.GalleryListAll(ctx)
	}
	return c.postToAPI(ctx, endpoint, opts)
}

func (c *Client) postToAPI(ctx context.Context, endpoint Endpoint, opts RequestOptions) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var body []byte
	if len(opts) > 0 {
		raw, err := json.Marshal(opts)
		if err != nil {
			return nil, fmt.Errorf("encode %s options: %w", endpoint.Name(), err)
		}
		body = raw
	}

	resp, err := c.http.Post(ctx, c.cfg.URL(endpoint), c.headers(), body)
	if err != nil {
		c.log.ErrorObj("kairos request failed", "kairos_error", map[string]any{
			"endpoint": endpoint.Name(),
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("post %s: %w", endpoint.Name(), err)
	}

	result := decodeResponse(resp.Body())
	kind := "json"
	if _, ok := result.(RawText); ok {
		kind = "raw_text"
	}
	c.log.DebugObj("kairos request completed", "kairos_call", map[string]any{
		"endpoint":      endpoint.Name(),
		"status_code":   resp.StatusCode(),
		"request_bytes": len(body),
		"body_bytes":    len(resp.Body()),
		"response_kind": kind,
	})
	return result, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"app_id":       c.cfg.AppID,
		"app_key":      c.cfg.AppKey,
	}
}
