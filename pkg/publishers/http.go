package publishers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/samvad-hq/kairos-face-client/internal/logger"
	"github.com/samvad-hq/kairos-face-client/pkg/httpclient"
)

// webhookPublisher sends each result as JSON to a URL. Event attributes travel
// as X-Kairos-* headers.
type webhookPublisher struct {
	id     string
	method string
	url    string
	client *resty.Client
	log    logger.Logger
}

func newWebhookPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	hook := cfg.HTTP
	client := httpclient.NewRestyHTTPClient(time.Duration(hook.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeaders(hook.Headers)
	return &webhookPublisher{
		id:     cfg.ID,
		method: hook.Method,
		url:    hook.URL,
		client: client,
		log:    log,
	}, nil
}

func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	req := w.client.R().SetContext(ctx).SetBody(evt)
	for key, val := range evt.Attributes() {
		req.SetHeader(attributeHeader(key), val)
	}

	resp, err := req.Execute(w.method, w.url)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", w.url, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook %s answered %d: %s", w.url, resp.StatusCode(), clip(resp.String(), 512))
	}
	w.log.DebugObj("result delivered", "webhook_delivery", map[string]any{
		"publisher_id": w.id,
		"operation":    evt.Operation,
		"status_code":  resp.StatusCode(),
	})
	return nil
}

// attributeHeader maps gallery_name to X-Kairos-Gallery-Name.
func attributeHeader(key string) string {
	return http.CanonicalHeaderKey("X-Kairos-" + strings.ReplaceAll(key, "_", "-"))
}

// clip shortens s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
