// Package pageimage resolves an HTML page to the image it advertises via OpenGraph tags,
// so a page link can be submitted wherever the Face API expects an image URL.
package pageimage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/kairos-face-client/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	defaultTimeout   = 15 * time.Second
)

// ErrNoImage is returned when the page carries no usable image tag.
var ErrNoImage = errors.New("page has no og:image or twitter:image")

// Resolver fetches pages and extracts their preview image URL.
type Resolver struct {
	client  httpclient.Client
	headers map[string]string
}

// NewResolver constructs a resolver with the provided HTTP client (or default).
func NewResolver(client httpclient.Client) *Resolver {
	if client == nil {
		client = httpclient.NewRestyClient(defaultTimeout).WithBodyLimit(maxHTMLBodyBytes)
	}
	return &Resolver{
		client: client,
		headers: map[string]string{
			"Accept":     "text/html,application/xhtml+xml",
			"User-Agent": "kairos-face-client/1.0",
		},
	}
}

// Resolve returns the absolute image URL advertised by pageURL.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return "", fmt.Errorf("page url is empty")
	}

	resp, err := r.client.Get(ctx, pageURL, r.headers)
	if err != nil {
		return "", fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("status %d body: %s", resp.StatusCode(), clip(string(resp.Body()), 1024))
	}

	ref, err := imageRef(resp.Body())
	if err != nil {
		return "", err
	}
	img := resolveURL(ref, pageURL)
	if img == "" {
		return "", ErrNoImage
	}
	return img, nil
}

// imageRef returns the first image reference found in the page's meta tags.
func imageRef(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	for _, sel := range []string{
		`meta[property="og:image:secure_url"]`,
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
	} {
		if val, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val), nil
		}
	}
	return "", nil
}

// resolveURL makes ref absolute against base. Unparseable input yields "".
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(refURL).String()
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
