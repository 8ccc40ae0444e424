package rpc

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const (
	e2eBundleTx   = "0xf86b808459682efe825208944592d8f8d7b001e72cb26a73e4fa1806a51ac79d880de0b6b3a7640000802ea0e96dfa6f3ae80f7b55e016bc9b140762cb86e2c08bfac6b20c5b6035bdf36611a00fdb494e6f842fcbc0bddb571c5035148446a77354a90e7dc4b0e9feafabaeda"
	e2eBundleHash = "0xcf85838f6ef4946f285b991a70c9732902b70a98f9615754a406651e59bbcaec"
)

// relayHandler answers one method. It returns the HTTP status and raw body.
type relayHandler func(params []json.RawMessage) (int, string)

// receivedCall is a request as observed by mockRelay.
type receivedCall struct {
	Body   string
	Header AuthHeader
	Method string
	Params []json.RawMessage
}

// mockRelay is an httptest relay that checks the signature header the way
// the real relay does before dispatching to a per-method handler.
type mockRelay struct {
	server   *httptest.Server
	handlers map[Method]relayHandler

	mu    sync.Mutex
	calls []receivedCall
}

func newMockRelay(t *testing.T, handlers map[Method]relayHandler) *mockRelay {
	t.Helper()
	relay := &mockRelay{handlers: handlers}
	relay.server = httptest.NewServer(http.HandlerFunc(relay.serve))
	t.Cleanup(relay.server.Close)
	return relay
}

func (r *mockRelay) URL() string { return r.server.URL }

func (r *mockRelay) Calls() []receivedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]receivedCall(nil), r.calls...)
}

func (r *mockRelay) serve(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		writeRelay(w, http.StatusBadRequest, relayErrorBody(-32700, "unable to read body"))
		return
	}

	header := AuthHeader(req.Header.Get(SignatureHeader))
	if err := header.Verify(body); err != nil {
		writeRelay(w, http.StatusForbidden, relayErrorBody(403, "signature does not match body"))
		return
	}

	var rpcReq Request
	if err := json.Unmarshal(body, &rpcReq); err != nil {
		writeRelay(w, http.StatusBadRequest, relayErrorBody(-32700, "parse error"))
		return
	}

	r.mu.Lock()
	r.calls = append(r.calls, receivedCall{
		Body:   string(body),
		Header: header,
		Method: rpcReq.Method,
		Params: rpcReq.Params,
	})
	r.mu.Unlock()

	handler, ok := r.handlers[Method(rpcReq.Method)]
	if !ok {
		writeRelay(w, http.StatusOK, relayErrorBody(-32601, "method not found"))
		return
	}
	status, res := handler(rpcReq.Params)
	writeRelay(w, status, res)
}

func writeRelay(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func relayErrorBody(code int, message string) string {
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"error":{"code":%d,"message":%q}}`, code, message)
}

func relayResultBody(result string) string {
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"result":%s}`, result)
}

// sendBundleHandler accepts e2eBundleTx and rejects anything else the way
// the relay rejects undecodable transactions.
func sendBundleHandler() relayHandler {
	return func(params []json.RawMessage) (int, string) {
		var p SendBundleParams
		if len(params) != 1 {
			return http.StatusOK, relayErrorBody(-32602, "invalid params")
		}
		if err := json.Unmarshal(params[0], &p); err != nil {
			return http.StatusOK, relayErrorBody(-32602, "invalid params")
		}
		for _, tx := range p.Txs {
			if tx != e2eBundleTx {
				return http.StatusOK, relayErrorBody(-32000, "unable to decode bundle")
			}
		}
		return http.StatusOK, relayResultBody(fmt.Sprintf(`{"bundleHash":%q}`, e2eBundleHash))
	}
}
