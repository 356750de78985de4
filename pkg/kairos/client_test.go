package kairos

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/samvad-hq/kairos-face-client/pkg/httpclient"
)

type capturedRequest struct {
	method  string
	path    string
	header  http.Header
	body    []byte
	hasBody bool
}

func newTestServer(t *testing.T, status int, reply string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*captured = capturedRequest{
			method:  r.Method,
			path:    r.URL.Path,
			header:  r.Header.Clone(),
			body:    body,
			hasBody: len(body) > 0,
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return New(DefaultOptions(), Options{
		KeyAppID:   "1234",
		KeyAppKey:  "abcde1234",
		KeyBaseURL: srv.URL,
	})
}

func TestRecognizeSendsHeadersAndBody(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusOK, `{"images":[]}`, &got)

	resp, err := newTestClient(srv).Recognize(context.Background(), RequestOptions{
		"gallery_name": "testgallery",
		"url":          "https://x/y.jpg",
	})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got.method != http.MethodPost || got.path != "/recognize" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	if got.header.Get("Content-Type") != "application/json" {
		t.Fatalf("Content-Type = %q", got.header.Get("Content-Type"))
	}
	if got.header.Get("app_id") != "1234" || got.header.Get("app_key") != "abcde1234" {
		t.Fatalf("auth headers missing: %v", got.header)
	}
	if string(got.body) != `{"gallery_name":"testgallery","url":"https://x/y.jpg"}` {
		t.Fatalf("body = %s", got.body)
	}
	parsed, ok := resp.(ParsedJSON)
	if !ok {
		t.Fatalf("expected ParsedJSON, got %T", resp)
	}
	want := map[string]any{"images": []any{}}
	if !reflect.DeepEqual(parsed.Value, want) {
		t.Fatalf("Value = %#v", parsed.Value)
	}
}

func TestOperationsHitTheirEndpoints(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusOK, `{}`, &got)
	c := newTestClient(srv)
	ctx := context.Background()
	opts := RequestOptions{"gallery_name": "g"}

	calls := []struct {
		path string
		call func() (Response, error)
	}{
		{"/enroll", func() (Response, error) { return c.Enroll(ctx, opts) }},
		{"/recognize", func() (Response, error) { return c.Recognize(ctx, opts) }},
		{"/gallery/remove_subject", func() (Response, error) { return c.GalleryRemoveSubject(ctx, opts) }},
		{"/detect", func() (Response, error) { return c.Detect(ctx, opts) }},
		{"/gallery/view", func() (Response, error) { return c.GalleryView(ctx, opts) }},
		{"/gallery/list_all", func() (Response, error) { return c.GalleryListAll(ctx) }},
	}
	for _, call := range calls {
		if _, err := call.call(); err != nil {
			t.Fatalf("%s: %v", call.path, err)
		}
		if got.path != call.path {
			t.Fatalf("expected %s, got %s", call.path, got.path)
		}
		if got.header.Get("app_id") != "1234" || got.header.Get("app_key") != "abcde1234" {
			t.Fatalf("%s: auth headers missing", call.path)
		}
	}
}

func TestEmptyOptionsSendNoBody(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusOK, `{}`, &got)
	c := newTestClient(srv)

	if _, err := c.Detect(context.Background(), RequestOptions{}); err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got.hasBody {
		t.Fatalf("expected no body, got %q", got.body)
	}
	if _, err := c.Enroll(context.Background(), nil); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if got.hasBody {
		t.Fatalf("expected no body for nil options, got %q", got.body)
	}
}

func TestGalleryListAllSendsNoBody(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusOK, `{"gallery_ids":["a","b"]}`, &got)

	resp, err := newTestClient(srv).GalleryListAll(context.Background())
	if err != nil {
		t.Fatalf("GalleryListAll: %v", err)
	}
	if got.method != http.MethodPost || got.path != "/gallery/list_all" || got.hasBody {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.header.Get("app_id") != "1234" || got.header.Get("app_key") != "abcde1234" {
		t.Fatalf("auth headers missing: %v", got.header)
	}
	if Text(resp) != `{"gallery_ids":["a","b"]}` {
		t.Fatalf("Text = %s", Text(resp))
	}
}

func TestInvalidJSONReturnsRawText(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusInternalServerError, "Internal Server Error", &got)

	resp, err := newTestClient(srv).Enroll(context.Background(), RequestOptions{"subject_id": "s"})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	raw, ok := resp.(RawText)
	if !ok {
		t.Fatalf("expected RawText, got %T", resp)
	}
	if raw.String() != "INVALID_JSON: Internal Server Error" {
		t.Fatalf("String = %q", raw.String())
	}
}

func TestJSONErrorBodyIsParsedRegardlessOfStatus(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusUnauthorized, `{"Errors":[{"ErrCode":5003}]}`, &got)

	resp, err := newTestClient(srv).GalleryView(context.Background(), RequestOptions{"gallery_name": "g"})
	if err != nil {
		t.Fatalf("GalleryView: %v", err)
	}
	if _, ok := resp.(ParsedJSON); !ok {
		t.Fatalf("expected ParsedJSON for JSON error body, got %T", resp)
	}
}

func TestScalarJSONResponse(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusOK, `42`, &got)

	resp, err := newTestClient(srv).GalleryListAll(context.Background())
	if err != nil {
		t.Fatalf("GalleryListAll: %v", err)
	}
	if parsed, ok := resp.(ParsedJSON); !ok || parsed.Value != json.Number("42") {
		t.Fatalf("unexpected response %#v", resp)
	}
}

func TestLargeIntegersKeepEveryDigit(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusOK, `{"face_id":12345678901234567890,"url":"https://x/y.jpg?a=1&b=<2>"}`, &got)

	resp, err := newTestClient(srv).Detect(context.Background(), RequestOptions{"url": "https://x/y.jpg"})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	parsed, ok := resp.(ParsedJSON)
	if !ok {
		t.Fatalf("expected ParsedJSON, got %T", resp)
	}
	obj, _ := parsed.Value.(map[string]any)
	if obj["face_id"] != json.Number("12345678901234567890") {
		t.Fatalf("face_id = %#v", obj["face_id"])
	}
	want := `{"face_id":12345678901234567890,"url":"https://x/y.jpg?a=1&b=<2>"}`
	if got := Text(resp); got != want {
		t.Fatalf("Text = %s, want %s", got, want)
	}

	var out struct {
		FaceID uint64 `json:"face_id"`
	}
	if err := parsed.Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.FaceID != 12345678901234567890 {
		t.Fatalf("FaceID = %d", out.FaceID)
	}
}

type failingHTTP struct{}

func (failingHTTP) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	return nil, errors.New("boom")
}

func (failingHTTP) Post(context.Context, string, map[string]string, []byte) (httpclient.Response, error) {
	return nil, errors.New("boom")
}

func TestTransportFailurePropagates(t *testing.T) {
	c := New(DefaultOptions(), nil, WithHTTPClient(failingHTTP{}))
	if _, err := c.Detect(context.Background(), RequestOptions{"url": "u"}); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestUnserializableOptionsFail(t *testing.T) {
	c := New(DefaultOptions(), nil, WithHTTPClient(failingHTTP{}))
	_, err := c.Enroll(context.Background(), RequestOptions{"bad": make(chan int)})
	if err == nil {
		t.Fatalf("expected encode error")
	}
}

func TestInvokeDispatchesByName(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusOK, `{}`, &got)
	c := newTestClient(srv)

	if _, err := c.Invoke(context.Background(), "gallery_remove_subject", RequestOptions{"subject_id": "s"}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got.path != "/gallery/remove_subject" || string(got.body) != `{"subject_id":"s"}` {
		t.Fatalf("unexpected request %+v", got)
	}

	if _, err := c.Invoke(context.Background(), "gallery_list_all", RequestOptions{"ignored": true}); err != nil {
		t.Fatalf("Invoke list_all: %v", err)
	}
	if got.path != "/gallery/list_all" || got.hasBody {
		t.Fatalf("gallery_list_all should not send a body: %+v", got)
	}

	if _, err := c.Invoke(context.Background(), "verify", nil); err == nil {
		t.Fatalf("expected unknown operation error")
	}
}
