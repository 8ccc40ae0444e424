package rpc

import (
	"errors"
	"fmt"

	"github.com/0xpanoramix/flashbots-relay/pkg/sign"
)

var (
	// ErrInvalidKey is returned when the signing key is malformed or missing.
	ErrInvalidKey = sign.ErrInvalidKey
	// ErrSigningFailure is returned when the request could not be signed.
	ErrSigningFailure = sign.ErrSigningFailure

	ErrInvalidParams        = errors.New("invalid params")
	ErrInvalidRequestMethod = errors.New("invalid request method")
	ErrMarshalingRequest    = errors.New("error marshaling request")
	ErrInvalidAuthHeader    = errors.New("invalid auth header")
	ErrMissingResult        = errors.New("response has no result")
)

// TransportError reports a network-level failure. The request may or may not
// have reached the relay; it is never retried.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error calling %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// maxRawInError bounds how much of a malformed body is echoed in Error().
const maxRawInError = 256

// MalformedResponseError reports a response that is neither a relay error nor
// the result shape the method expects. Raw holds the full body.
type MalformedResponseError struct {
	Status int
	Raw    []byte
	Err    error
}

func (e *MalformedResponseError) Error() string {
	raw := e.Raw
	suffix := ""
	if len(raw) > maxRawInError {
		raw, suffix = raw[:maxRawInError], "..."
	}
	if e.Status != 0 {
		return fmt.Sprintf("malformed relay response (status %d): %v: %q%s", e.Status, e.Err, raw, suffix)
	}
	return fmt.Sprintf("malformed relay response: %v: %q%s", e.Err, raw, suffix)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// RelayError is a structured error returned by the relay. Code and message
// are kept exactly as received.
type RelayError struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      uint64       `json:"id"`
	Detail  ErrorContent `json:"error"`
}

// ErrorContent is the "error" member of a JSON-RPC error response.
type ErrorContent struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay error: %s (code %d)", e.Detail.Message, e.Detail.Code)
}

// Code returns the relay's error code.
func (e *RelayError) Code() int64 { return e.Detail.Code }

// Message returns the relay's error message.
func (e *RelayError) Message() string { return e.Detail.Message }
