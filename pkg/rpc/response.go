package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Outcome is the classified response of a relay call: either a relay error
// or a decoded result, never both.
type Outcome[T any] struct {
	Err    *RelayError
	Result T
}

// IsError reports whether the relay rejected the call.
func (o Outcome[T]) IsError() bool {
	return o.Err != nil
}

// Unwrap returns the result, or the relay error as a Go error.
func (o Outcome[T]) Unwrap() (T, error) {
	if o.Err != nil {
		var zero T
		return zero, o.Err
	}
	return o.Result, nil
}

// Classify decodes a raw relay response into an Outcome.
//
// A body is a relay error only when it is a JSON object whose "error" member
// carries an integer "code" and a string "message". That check runs before
// decoding T, so a permissive T cannot swallow an error object. Anything that
// is neither shape yields a *MalformedResponseError.
func Classify[T any](raw []byte) (Outcome[T], error) {
	return classify[T](0, raw)
}

// classify is Classify with the HTTP status of the exchange. A non-2xx status
// is only accepted when the body is a relay error.
func classify[T any](status int, raw []byte) (Outcome[T], error) {
	if relayErr, ok := decodeRelayError(raw); ok {
		return Outcome[T]{Err: relayErr}, nil
	}

	if status != 0 && (status < 200 || status > 299) {
		return Outcome[T]{}, &MalformedResponseError{
			Status: status,
			Raw:    raw,
			Err:    fmt.Errorf("unexpected status %d", status),
		}
	}

	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return Outcome[T]{}, &MalformedResponseError{Status: status, Raw: raw, Err: ErrMissingResult}
	}

	var result T
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return Outcome[T]{}, &MalformedResponseError{Status: status, Raw: raw, Err: err}
	}
	return Outcome[T]{Result: result}, nil
}

func decodeRelayError(raw []byte) (*RelayError, bool) {
	var shape struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Error   *struct {
			Code    *json.RawMessage `json:"code"`
			Message *string          `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, false
	}
	if shape.Error == nil || shape.Error.Code == nil || shape.Error.Message == nil {
		return nil, false
	}
	code, err := strconv.ParseInt(string(*shape.Error.Code), 10, 64)
	if err != nil {
		return nil, false
	}

	return &RelayError{
		JSONRPC: shape.JSONRPC,
		ID:      parseID(shape.ID),
		Detail: ErrorContent{
			Code:    code,
			Message: *shape.Error.Message,
		},
	}, true
}

// parseID returns a numeric JSON-RPC id, or 0 when the id is absent or not an
// unsigned integer.
func parseID(raw json.RawMessage) uint64 {
	id, err := strconv.ParseUint(string(bytes.TrimSpace(raw)), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Envelope is a JSON-RPC success response that wraps its result.
type Envelope[T any] struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Result  T      `json:"result"`
}

// UnmarshalJSON requires a non-null "result" member.
func (e *Envelope[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Result) == 0 || bytes.Equal(bytes.TrimSpace(raw.Result), []byte("null")) {
		return ErrMissingResult
	}

	var result T
	if err := json.Unmarshal(raw.Result, &result); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}

	e.JSONRPC = raw.JSONRPC
	e.ID = parseID(raw.ID)
	e.Result = result
	return nil
}
