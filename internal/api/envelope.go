// Package api defines the canonical response envelope every caller of the
// client sees, regardless of whether a response came from the backend or the
// demo resolver.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Envelope is the canonical {success, data, message} response shape. Status
// carries the originating HTTP status code; 0 means no response was received
// (network failure) or the envelope was resolved locally in demo mode.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Status  int             `json:"-"`
}

// DecodeData unmarshals the envelope payload into v.
func (e *Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("envelope has no data")
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode envelope data: %w", err)
	}
	return nil
}

// HasData reports whether the payload is present and not JSON null.
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0 && !bytes.Equal(bytes.TrimSpace(e.Data), []byte("null"))
}

// Normalize converts a raw HTTP response body into the canonical envelope.
// Backends that already produce {success, data, message} pass through
// untouched; bare JSON bodies are wrapped with success derived from the
// status code, so callers never branch on backend-specific shapes.
func Normalize(status int, body []byte) *Envelope {
	env := &Envelope{
		Status:  status,
		Success: status >= http.StatusOK && status < http.StatusMultipleChoices,
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return env
	}

	var probe struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &probe); err == nil && probe.Success != nil {
		env.Success = *probe.Success
		env.Data = probe.Data
		env.Message = probe.Message
		return env
	}

	if json.Valid(trimmed) {
		env.Data = append(json.RawMessage(nil), trimmed...)
		// Surface a top-level message field even from non-enveloped bodies.
		var msgProbe struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &msgProbe); err == nil && msgProbe.Message != "" {
			env.Message = msgProbe.Message
		}
		return env
	}

	env.Message = string(trimmed)
	return env
}

// MarshalData is a convenience for building envelopes from Go values, used by
// the demo resolver and tests.
func MarshalData(v any) (json.RawMessage, error) {
	if v == nil {
		return json.RawMessage("null"), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope data: %w", err)
	}
	return data, nil
}
