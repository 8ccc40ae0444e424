package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// JSONRPCVersion is the protocol version sent with every request.
	JSONRPCVersion = "2.0"
	// DefaultRequestID is the id of every request. Each call is a single
	// request/response exchange, so a constant id is sufficient.
	DefaultRequestID uint64 = 1
)

// Request is a JSON-RPC 2.0 request whose serialized form is the exact byte
// sequence that gets hashed, signed and sent to the relay.
//
// Fields are declared in wire order: id, jsonrpc, method, params.
type Request struct {
	ID      uint64            `json:"id"`
	Version string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// NewRequest builds a request for method with the given positional params.
//
// Params keep the caller's order. Each param is marshaled and canonicalized:
// object keys are sorted at every depth, insignificant whitespace is removed
// and HTML characters are not escaped. Numbers keep their literal form.
func NewRequest(method Method, params ...any) (Request, error) {
	if method == "" {
		return Request{}, ErrInvalidRequestMethod
	}

	rawParams := make([]json.RawMessage, 0, len(params))
	for i, p := range params {
		raw, err := canonicalJSON(p)
		if err != nil {
			return Request{}, fmt.Errorf("%w: param %d: %w", ErrMarshalingRequest, i, err)
		}
		rawParams = append(rawParams, raw)
	}

	return Request{
		ID:      DefaultRequestID,
		Version: JSONRPCVersion,
		Method:  string(method),
		Params:  rawParams,
	}, nil
}

// Body returns the canonical JSON encoding of the request, without a
// trailing newline.
//
// Example output:
//
//	{"id":1,"jsonrpc":"2.0","method":"flashbots_getUserStats","params":["0xe0df5e"]}
func (r Request) Body() ([]byte, error) {
	if r.Params == nil {
		r.Params = []json.RawMessage{}
	}
	data, err := marshalNoEscape(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshalingRequest, err)
	}
	return data, nil
}

// Hash returns the Keccak-256 digest of Body.
func (r Request) Hash() (common.Hash, error) {
	body, err := r.Body()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(body), nil
}

// canonicalJSON re-encodes v through a generic value so maps are emitted with
// sorted keys regardless of Go struct field order.
func canonicalJSON(v any) (json.RawMessage, error) {
	data, err := marshalNoEscape(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	return marshalNoEscape(generic)
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
