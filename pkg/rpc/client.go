package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/0xpanoramix/flashbots-relay/pkg/log"
	"github.com/0xpanoramix/flashbots-relay/pkg/sign"
)

// DefaultRelayEndpoint is the public Flashbots relay.
const DefaultRelayEndpoint = "https://relay.flashbots.net"

const tracerName = "github.com/0xpanoramix/flashbots-relay/pkg/rpc"

// Call outcomes reported to a CallRecorder.
const (
	OutcomeOK              = "ok"
	OutcomeRelayError      = "relay_error"
	OutcomeTransportError  = "transport_error"
	OutcomeMalformed       = "malformed_response"
	OutcomeSigningFailure  = "signing_failure"
	OutcomeInvalidParams   = "invalid_params"
	OutcomeInvalidKey      = "invalid_key"
	OutcomeMarshalingError = "marshaling_error"
)

// CallRecorder observes every finished call.
type CallRecorder interface {
	RecordCall(method Method, outcome string, duration time.Duration)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Endpoint is the relay URL requests are posted to.
	Endpoint string
	// Recorder, if set, is notified after each call.
	Recorder CallRecorder
	// TracerProvider creates the per-call spans. Defaults to the global provider.
	TracerProvider trace.TracerProvider
}

var DefaultClientConfig = ClientConfig{
	Endpoint: DefaultRelayEndpoint,
}

// Client calls a Flashbots relay. It holds no per-call state and is safe for
// concurrent use; the signer is supplied on every call.
type Client struct {
	cfg       ClientConfig
	transport Transport
	validate  *validator.Validate
	tracer    trace.Tracer
}

// NewClient creates a client posting through transport. An empty endpoint
// falls back to DefaultRelayEndpoint and a nil transport to HTTPTransport.
func NewClient(cfg ClientConfig, transport Transport) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultRelayEndpoint
	}
	if transport == nil {
		transport = NewHTTPTransport(nil)
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	return &Client{
		cfg:       cfg,
		transport: transport,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		tracer:    cfg.TracerProvider.Tracer(tracerName),
	}
}

// Endpoint returns the relay URL the client posts to.
func (c *Client) Endpoint() string {
	return c.cfg.Endpoint
}

// GetUserStats returns the signer's stats as of blockNumber.
func (c *Client) GetUserStats(ctx context.Context, signer sign.Signer, blockNumber uint64) (UserStats, error) {
	return call[UserStats](ctx, c, signer, GetUserStatsMethod, nil, hexutil.EncodeUint64(blockNumber))
}

// GetBundleStats returns the relay's view of a previously sent bundle.
func (c *Client) GetBundleStats(ctx context.Context, signer sign.Signer, params GetBundleStatsParams) (BundleStats, error) {
	return call[BundleStats](ctx, c, signer, GetBundleStatsMethod, &params, params)
}

// SendPrivateTransaction returns the hash of the submitted transaction.
func (c *Client) SendPrivateTransaction(ctx context.Context, signer sign.Signer, params SendPrivateTransactionParams) (Envelope[string], error) {
	return call[Envelope[string]](ctx, c, signer, SendPrivateTransactionMethod, &params, params)
}

// CancelPrivateTransaction reports whether the relay accepted the cancellation.
func (c *Client) CancelPrivateTransaction(ctx context.Context, signer sign.Signer, params CancelPrivateTransactionParams) (Envelope[bool], error) {
	return call[Envelope[bool]](ctx, c, signer, CancelPrivateTransactionMethod, &params, params)
}

func (c *Client) SendBundle(ctx context.Context, signer sign.Signer, params SendBundleParams) (Envelope[SendBundleResult], error) {
	return call[Envelope[SendBundleResult]](ctx, c, signer, SendBundleMethod, &params, params)
}

func (c *Client) CallBundle(ctx context.Context, signer sign.Signer, params CallBundleParams) (Envelope[CallBundleResult], error) {
	return call[Envelope[CallBundleResult]](ctx, c, signer, CallBundleMethod, &params, params)
}

// call runs one signed exchange: validate, build, sign, post, classify.
// toValidate is a pointer to a params struct, or nil.
func call[T any](ctx context.Context, c *Client, signer sign.Signer, method Method, toValidate any, params ...any) (T, error) {
	var zero T
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, method.String(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", method.String()),
		))
	defer span.End()

	logger := log.FromContext(ctx).
		WithName("relay").
		WithKV("method", method.String()).
		WithKV("callId", uuid.NewString())
	ctx = log.SetContextLogger(ctx, logger)
	logger = log.FromContext(ctx)

	var result T
	status, raw, err := c.exchange(ctx, signer, method, toValidate, params)
	if err == nil {
		var classified Outcome[T]
		if classified, err = classify[T](status, raw); err == nil {
			result, err = classified.Unwrap()
		}
	}

	outcome := OutcomeOf(err)
	if c.cfg.Recorder != nil {
		c.cfg.Recorder.RecordCall(method, outcome, time.Since(start))
	}
	span.SetAttributes(attribute.String("relay.outcome", outcome))

	if err != nil {
		span.SetStatus(codes.Error, outcome)
		var relayErr *RelayError
		if errors.As(err, &relayErr) {
			logger.Warn("relay rejected call", "code", relayErr.Code(), "message", relayErr.Message())
		} else {
			logger.Error("relay call failed", "outcome", outcome, "error", err)
		}
		return zero, err
	}

	logger.Debug("relay call succeeded", "duration", time.Since(start))
	return result, nil
}

// exchange validates, builds, signs and posts one request and returns the
// raw relay response.
func (c *Client) exchange(ctx context.Context, signer sign.Signer, method Method, toValidate any, params []any) (int, []byte, error) {
	logger := log.FromContext(ctx)

	if toValidate != nil {
		if err := c.validate.Struct(toValidate); err != nil {
			return 0, nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
	}

	req, err := NewRequest(method, params...)
	if err != nil {
		return 0, nil, err
	}
	body, err := req.Body()
	if err != nil {
		return 0, nil, err
	}

	header, err := SignBody(signer, body)
	if err != nil {
		return 0, nil, err
	}
	logger.Debug("signed relay request", "signer", header.Address().String(), "bodySize", len(body))

	status, raw, err := c.transport.Post(ctx, c.cfg.Endpoint, map[string]string{
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		SignatureHeader: header.String(),
	}, body)
	if err != nil {
		return 0, nil, &TransportError{Endpoint: c.cfg.Endpoint, Err: err}
	}
	logger.Debug("received relay response", "status", status, "responseSize", len(raw))

	return status, raw, nil
}

// OutcomeOf maps an error returned by a Client method to its outcome label.
func OutcomeOf(err error) string {
	var (
		relayErr     *RelayError
		transportErr *TransportError
		malformedErr *MalformedResponseError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &relayErr):
		return OutcomeRelayError
	case errors.As(err, &transportErr):
		return OutcomeTransportError
	case errors.As(err, &malformedErr):
		return OutcomeMalformed
	case errors.Is(err, ErrInvalidParams):
		return OutcomeInvalidParams
	case errors.Is(err, ErrInvalidKey):
		return OutcomeInvalidKey
	case errors.Is(err, ErrSigningFailure):
		return OutcomeSigningFailure
	default:
		return OutcomeMarshalingError
	}
}
