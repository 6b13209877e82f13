package pitch

import (
	"bytes"
	"encoding/json"
	"strings"

	"pitchctl/internal/services"
)

// Body is a decoded JSON object returned by the backend. Keys map to their
// undecoded values so callers can test for presence without conflating an
// absent key with an explicit null.
type Body map[string]json.RawMessage

// DecodeBody parses a response payload. An empty payload yields an empty Body.
func DecodeBody(data []byte) (Body, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Body{}, nil
	}
	if trimmed[0] != '{' {
		return nil, services.Wrap(services.ErrMalformedResponse, "pitch", "decode body", "expected a JSON object", nil)
	}
	var body Body
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return nil, services.Wrap(services.ErrMalformedResponse, "pitch", "decode body", "", err)
	}
	if body == nil {
		body = Body{}
	}
	return body, nil
}

// Has reports whether key is present, even when its value is null.
func (b Body) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// String returns the value of key when it holds a JSON string.
func (b Body) String(key string) (string, bool) {
	raw, ok := b[key]
	if !ok || !isJSONString(raw) {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

// ID returns a non-empty identifier stored either as a JSON string or number.
func (b Body) ID(key string) (string, bool) {
	raw, ok := b[key]
	if !ok {
		return "", false
	}
	if isJSONString(raw) {
		value, _ := b.String(key)
		value = strings.TrimSpace(value)
		return value, value != ""
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil || number == "" {
		return "", false
	}
	return number.String(), true
}

// Int returns the integral value of key.
func (b Body) Int(key string) (int, bool) {
	raw, ok := b[key]
	if !ok || isJSONString(raw) {
		return 0, false
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil || number == "" {
		return 0, false
	}
	value, err := number.Int64()
	if err != nil {
		return 0, false
	}
	return int(value), true
}

// Message returns the sentinel message carried by a "nothing to return"
// response. Only a JSON string counts; an absent or null message does not.
func (b Body) Message() (string, bool) {
	return b.String("message")
}

func isJSONString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// outcome classifies a response that may carry either a payload or a
// sentinel message.
type outcome int

const (
	outcomeData outcome = iota
	outcomeSentinel
	outcomeMalformed
)

// classify applies the presence rule: a string message marks a sentinel
// even when the payload key is also sent (usually as null), then the payload
// key means data, otherwise the response is malformed. A null message never
// counts. An empty payloadKey marks an acknowledgement endpoint where
// anything but a message is success.
func classify(body Body, payloadKey string) (outcome, string) {
	if msg, ok := body.Message(); ok {
		return outcomeSentinel, msg
	}
	if payloadKey == "" || body.Has(payloadKey) {
		return outcomeData, ""
	}
	return outcomeMalformed, ""
}
