package kairos

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// InvalidJSONPrefix prefixes the text rendering of a response body that was not valid JSON.
const InvalidJSONPrefix = "INVALID_JSON: "

// Response is the result of an API call: either ParsedJSON or RawText.
type Response interface {
	isResponse()
}

// ParsedJSON holds a response body that decoded as JSON.
// Objects are map[string]any, arrays []any and numbers json.Number, so large
// integers keep every digit.
type ParsedJSON struct {
	Value any
}

// RawText holds a response body that was not valid JSON.
type RawText struct {
	Body string
}

func (ParsedJSON) isResponse() {}
func (RawText) isResponse()    {}

// Decode converts the parsed value into v, typically a pointer to a struct.
func (p ParsedJSON) Decode(v any) error {
	raw, err := encodeJSON(p.Value)
	if err != nil {
		return fmt.Errorf("re-encode response: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// String renders the body with the INVALID_JSON prefix.
func (r RawText) String() string { return InvalidJSONPrefix + r.Body }

// Text renders any response as a single string: JSON re-encoded compactly, or the
// INVALID_JSON form for raw text. A nil response renders as "".
func Text(resp Response) string {
	switch r := resp.(type) {
	case ParsedJSON:
		raw, err := encodeJSON(r.Value)
		if err != nil {
			return fmt.Sprint(r.Value)
		}
		return string(raw)
	case RawText:
		return r.String()
	default:
		return ""
	}
}

// encodeJSON marshals v without HTML escaping, so URLs print as sent.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// decodeResponse parses body as exactly one JSON value. Anything else, trailing
// data included, becomes RawText.
func decodeResponse(body []byte) Response {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return RawText{Body: string(body)}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return RawText{Body: string(body)}
	}
	return ParsedJSON{Value: v}
}
