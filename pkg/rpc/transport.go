package rpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/valyala/fasthttp"
)

// maxResponseSize caps how much of a relay response body is read.
const maxResponseSize = 10 << 20

// Transport posts a signed body to the relay and returns the raw response.
// Implementations must send body byte for byte and must not retry.
type Transport interface {
	Post(ctx context.Context, url string, headers map[string]string, body []byte) (status int, resBody []byte, err error)
}

var (
	_ Transport = (*HTTPTransport)(nil)
	_ Transport = (*FastHTTPTransport)(nil)
)

// HTTPTransport is a Transport backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client. A nil client uses a fresh http.Client.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Post(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return res.StatusCode, resBody, nil
}

// FastHTTPTransport is a Transport backed by valyala/fasthttp. The context
// deadline, if any, bounds the whole exchange.
type FastHTTPTransport struct {
	client *fasthttp.Client
}

// NewFastHTTPTransport wraps client. A nil client uses a default
// fasthttp.Client.
func NewFastHTTPTransport(client *fasthttp.Client) *FastHTTPTransport {
	if client == nil {
		client = &fasthttp.Client{
			MaxResponseBodySize: maxResponseSize,
		}
	}
	return &FastHTTPTransport{client: client}
}

func (t *FastHTTPTransport) Post(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	res := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(res)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.SetBodyRaw(body)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = t.client.DoDeadline(req, res, deadline)
	} else {
		err = t.client.Do(req, res)
	}
	if err != nil {
		return 0, nil, err
	}

	// res is returned to the pool on exit.
	resBody := append([]byte(nil), res.Body()...)
	return res.StatusCode(), resBody, nil
}
