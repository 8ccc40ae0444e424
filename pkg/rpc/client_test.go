package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xpanoramix/flashbots-relay/pkg/sign"
)

type recordedCall struct {
	Method  Method
	Outcome string
}

type callRecorderMock struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (m *callRecorderMock) RecordCall(method Method, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, recordedCall{Method: method, Outcome: outcome})
}

func (m *callRecorderMock) Calls() []recordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedCall(nil), m.calls...)
}

type transportFunc func(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error)

func (f transportFunc) Post(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error) {
	return f(ctx, url, headers, body)
}

func transports() map[string]Transport {
	return map[string]Transport{
		"net/http": NewHTTPTransport(nil),
		"fasthttp": NewFastHTTPTransport(nil),
	}
}

func TestClient_SendBundle(t *testing.T) {
	relay := newMockRelay(t, map[Method]relayHandler{
		SendBundleMethod: sendBundleHandler(),
	})
	signer := newTestSigner(t)

	for name, transport := range transports() {
		t.Run(name, func(t *testing.T) {
			client := NewClient(ClientConfig{Endpoint: relay.URL()}, transport)

			t.Run("accepted bundle", func(t *testing.T) {
				res, err := client.SendBundle(context.Background(), signer, SendBundleParams{
					Txs:         []string{e2eBundleTx},
					BlockNumber: "0xcaa6fa",
				})
				require.NoError(t, err)
				assert.Equal(t, "2.0", res.JSONRPC)
				assert.Equal(t, uint64(1), res.ID)
				assert.Equal(t, e2eBundleHash, res.Result.BundleHash)
			})

			t.Run("undecodable bundle", func(t *testing.T) {
				_, err := client.SendBundle(context.Background(), signer, SendBundleParams{
					Txs:         []string{"0xdeadbeef"},
					BlockNumber: "0xcaa6fa",
				})
				require.Error(t, err)

				var relayErr *RelayError
				require.True(t, errors.As(err, &relayErr))
				assert.Equal(t, "unable to decode bundle", relayErr.Message())
				assert.Equal(t, int64(-32000), relayErr.Code())
			})
		})
	}

	calls := relay.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t,
		`{"id":1,"jsonrpc":"2.0","method":"eth_sendBundle","params":[{"blockNumber":"0xcaa6fa","txs":["`+e2eBundleTx+`"]}]}`,
		calls[0].Body)
	assert.Equal(t, testKeyAddress, calls[0].Header.Address().String())
}

func TestClient_GetUserStats(t *testing.T) {
	relay := newMockRelay(t, map[Method]relayHandler{
		GetUserStatsMethod: func(params []json.RawMessage) (int, string) {
			return http.StatusOK, `{"isHighPriority":true,"allTimeMinerPayments":"1280749594841588639","allTimeGasSimulated":"30049187231","last7dMinerPayments":"1280749594841588639","last7dGasSimulated":"30049187231","last1dMinerPayments":"142305510537954293","last1dGasSimulated":"2731724296"}`
		},
	})
	client := NewClient(ClientConfig{Endpoint: relay.URL()}, nil)

	stats, err := client.GetUserStats(context.Background(), newTestSigner(t), 0xe0df5e)
	require.NoError(t, err)
	require.NotNil(t, stats.IsHighPriority)
	assert.True(t, *stats.IsHighPriority)
	require.NotNil(t, stats.Last1dMinerPayments)
	assert.Equal(t, "142305510537954293", *stats.Last1dMinerPayments)

	calls := relay.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, goldenUserStatsBody, calls[0].Body)
}

func TestClient_GetBundleStats(t *testing.T) {
	relay := newMockRelay(t, map[Method]relayHandler{
		GetBundleStatsMethod: func(params []json.RawMessage) (int, string) {
			return http.StatusOK, `{"isSimulated":true,"isSentToMiners":true,"isHighPriority":true,"simulatedAt":"2021-08-06T21:36:06.317Z","submittedAt":"2021-08-06T21:36:06.250Z","sentToMinersAt":"2021-08-06T21:36:06.343Z"}`
		},
	})
	client := NewClient(ClientConfig{Endpoint: relay.URL()}, nil)

	stats, err := client.GetBundleStats(context.Background(), newTestSigner(t), GetBundleStatsParams{
		BundleHash:  e2eBundleHash,
		BlockNumber: "0xcaa6fa",
	})
	require.NoError(t, err)
	require.NotNil(t, stats.IsSimulated)
	assert.True(t, *stats.IsSimulated)
	require.NotNil(t, stats.SentToMinersAt)
	assert.Equal(t, "2021-08-06T21:36:06.343Z", *stats.SentToMinersAt)

	calls := relay.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Params, 1)
	assert.JSONEq(t, `{"blockNumber":"0xcaa6fa","bundleHash":"`+e2eBundleHash+`"}`, string(calls[0].Params[0]))
}

func TestClient_PrivateTransaction(t *testing.T) {
	const txHash = "0x45df1bc3de765927b053ec029fc9d15d6321945b23cac0614eb0b5e61f3a2f2a"

	relay := newMockRelay(t, map[Method]relayHandler{
		SendPrivateTransactionMethod: func(params []json.RawMessage) (int, string) {
			return http.StatusOK, relayResultBody(`"` + txHash + `"`)
		},
		CancelPrivateTransactionMethod: func(params []json.RawMessage) (int, string) {
			return http.StatusOK, relayResultBody("true")
		},
	})
	client := NewClient(ClientConfig{Endpoint: relay.URL()}, nil)
	signer := newTestSigner(t)

	maxBlock := "0xcaa700"
	sent, err := client.SendPrivateTransaction(context.Background(), signer, SendPrivateTransactionParams{
		Tx:             e2eBundleTx,
		MaxBlockNumber: &maxBlock,
		Preferences:    &PrivateTxPreferences{Fast: true},
	})
	require.NoError(t, err)
	assert.Equal(t, txHash, sent.Result)

	cancelled, err := client.CancelPrivateTransaction(context.Background(), signer, CancelPrivateTransactionParams{
		TxHash: txHash,
	})
	require.NoError(t, err)
	assert.True(t, cancelled.Result)

	calls := relay.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, `{"maxBlockNumber":"0xcaa700","preferences":{"fast":true},"tx":"`+e2eBundleTx+`"}`, string(calls[0].Params[0]))
	assert.Equal(t, `{"txHash":"`+txHash+`"}`, string(calls[1].Params[0]))
}

func TestClient_CallBundle(t *testing.T) {
	relay := newMockRelay(t, map[Method]relayHandler{
		CallBundleMethod: func(params []json.RawMessage) (int, string) {
			return http.StatusOK, relayResultBody(`{
				"bundleGasPrice": "476190476193",
				"bundleHash": "` + e2eBundleHash + `",
				"coinbaseDiff": "20000000000126000",
				"ethSentToCoinbase": "20000000000000000",
				"gasFees": "126000",
				"results": [{
					"coinbaseDiff": "10000000000063000",
					"ethSentToCoinbase": "10000000000000000",
					"fromAddress": "0x02A727155aef8609c9f7F2179b2a1f560B39F5A0",
					"gasFees": "63000",
					"gasPrice": "476190476193",
					"gasUsed": 21000,
					"toAddress": "0x73625f59CAdc5009Cb458B751b3E7b6b48C06f2C",
					"txHash": "0x669b4704a7d993a946cdd6e2f95233f308ce0c4649d2e04944e8299efcaa098a",
					"value": "0x"
				}],
				"stateBlockNumber": 5221585,
				"totalGasUsed": 42000
			}`)
		},
	})
	client := NewClient(ClientConfig{Endpoint: relay.URL()}, nil)

	timestamp := int64(1615920932)
	res, err := client.CallBundle(context.Background(), newTestSigner(t), CallBundleParams{
		Txs:              []string{e2eBundleTx},
		BlockNumber:      "0xcaa6fa",
		StateBlockNumber: "latest",
		Timestamp:        &timestamp,
	})
	require.NoError(t, err)
	assert.Equal(t, e2eBundleHash, res.Result.BundleHash)
	assert.Equal(t, int64(5221585), res.Result.StateBlockNumber)
	assert.Equal(t, int64(42000), res.Result.TotalGasUsed)
	require.Len(t, res.Result.Results, 1)
	assert.Equal(t, int64(21000), res.Result.Results[0].GasUsed)
	assert.Empty(t, res.Result.Results[0].Error)

	calls := relay.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t,
		`{"blockNumber":"0xcaa6fa","stateBlockNumber":"latest","timestamp":1615920932,"txs":["`+e2eBundleTx+`"]}`,
		string(calls[0].Params[0]))
}

func TestClient_LocalFailures(t *testing.T) {
	relay := newMockRelay(t, map[Method]relayHandler{
		SendBundleMethod: sendBundleHandler(),
	})
	recorder := &callRecorderMock{}
	client := NewClient(ClientConfig{Endpoint: relay.URL(), Recorder: recorder}, nil)
	signer := newTestSigner(t)

	tests := []struct {
		name    string
		signer  sign.Signer
		params  SendBundleParams
		target  error
		outcome string
	}{
		{
			name:    "no txs",
			signer:  signer,
			params:  SendBundleParams{BlockNumber: "0xcaa6fa"},
			target:  ErrInvalidParams,
			outcome: OutcomeInvalidParams,
		},
		{
			name:    "non hex tx",
			signer:  signer,
			params:  SendBundleParams{Txs: []string{"not-hex"}, BlockNumber: "0xcaa6fa"},
			target:  ErrInvalidParams,
			outcome: OutcomeInvalidParams,
		},
		{
			name:    "missing block",
			signer:  signer,
			params:  SendBundleParams{Txs: []string{e2eBundleTx}},
			target:  ErrInvalidParams,
			outcome: OutcomeInvalidParams,
		},
		{
			name:    "signing failure",
			signer:  sign.NewFailingSigner(testKeyAddress, errors.New("key locked")),
			params:  SendBundleParams{Txs: []string{e2eBundleTx}, BlockNumber: "0xcaa6fa"},
			target:  ErrSigningFailure,
			outcome: OutcomeSigningFailure,
		},
		{
			name:    "nil signer",
			signer:  nil,
			params:  SendBundleParams{Txs: []string{e2eBundleTx}, BlockNumber: "0xcaa6fa"},
			target:  ErrInvalidKey,
			outcome: OutcomeInvalidKey,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := client.SendBundle(context.Background(), test.signer, test.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, test.target)

			recorded := recorder.Calls()
			require.NotEmpty(t, recorded)
			assert.Equal(t, recordedCall{Method: SendBundleMethod, Outcome: test.outcome}, recorded[len(recorded)-1])
		})
	}

	assert.Empty(t, relay.Calls())
}

func TestClient_TransportAndMalformed(t *testing.T) {
	signer := newTestSigner(t)
	params := SendBundleParams{Txs: []string{e2eBundleTx}, BlockNumber: "0xcaa6fa"}

	t.Run("transport error", func(t *testing.T) {
		cause := errors.New("connection reset")
		recorder := &callRecorderMock{}
		client := NewClient(ClientConfig{Endpoint: "http://relay.invalid", Recorder: recorder},
			transportFunc(func(context.Context, string, map[string]string, []byte) (int, []byte, error) {
				return 0, nil, cause
			}))

		_, err := client.SendBundle(context.Background(), signer, params)
		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, "http://relay.invalid", transportErr.Endpoint)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, []recordedCall{{Method: SendBundleMethod, Outcome: OutcomeTransportError}}, recorder.Calls())
	})

	t.Run("cancelled context", func(t *testing.T) {
		relay := newMockRelay(t, map[Method]relayHandler{SendBundleMethod: sendBundleHandler()})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		for name, transport := range transports() {
			t.Run(name, func(t *testing.T) {
				client := NewClient(ClientConfig{Endpoint: relay.URL()}, transport)
				_, err := client.SendBundle(ctx, signer, params)

				var transportErr *TransportError
				require.True(t, errors.As(err, &transportErr))
				assert.ErrorIs(t, err, context.Canceled)
			})
		}
		assert.Empty(t, relay.Calls())
	})

	t.Run("gateway error page", func(t *testing.T) {
		client := NewClient(ClientConfig{Endpoint: "http://relay.invalid"},
			transportFunc(func(context.Context, string, map[string]string, []byte) (int, []byte, error) {
				return http.StatusBadGateway, []byte("<html>502 Bad Gateway</html>"), nil
			}))

		_, err := client.SendBundle(context.Background(), signer, params)
		var malformed *MalformedResponseError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, http.StatusBadGateway, malformed.Status)
		assert.Equal(t, "<html>502 Bad Gateway</html>", string(malformed.Raw))
	})

	t.Run("sends signed headers", func(t *testing.T) {
		var got map[string]string
		var gotBody []byte
		client := NewClient(ClientConfig{Endpoint: "http://relay.invalid"},
			transportFunc(func(_ context.Context, url string, headers map[string]string, body []byte) (int, []byte, error) {
				got, gotBody = headers, body
				return http.StatusOK, []byte(relayResultBody(`{"bundleHash":"0x01"}`)), nil
			}))

		_, err := client.SendBundle(context.Background(), signer, params)
		require.NoError(t, err)
		assert.Equal(t, "application/json", got["Content-Type"])
		require.Contains(t, got, SignatureHeader)
		assert.NoError(t, AuthHeader(got[SignatureHeader]).Verify(gotBody))
	})
}

func TestClient_Concurrent(t *testing.T) {
	relay := newMockRelay(t, map[Method]relayHandler{SendBundleMethod: sendBundleHandler()})
	recorder := &callRecorderMock{}
	client := NewClient(ClientConfig{Endpoint: relay.URL(), Recorder: recorder}, nil)
	signer := newTestSigner(t)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx := e2eBundleTx
			if i%2 == 1 {
				tx = "0xdeadbeef"
			}
			_, err := client.SendBundle(context.Background(), signer, SendBundleParams{
				Txs:         []string{tx},
				BlockNumber: "0xcaa6fa",
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok, rejected int
	for err := range errs {
		var relayErr *RelayError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &relayErr):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, workers/2, ok)
	assert.Equal(t, workers/2, rejected)
	assert.Len(t, recorder.Calls(), workers)
	assert.Len(t, relay.Calls(), workers)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{}, nil)
	assert.Equal(t, DefaultRelayEndpoint, client.Endpoint())
	assert.Equal(t, DefaultRelayEndpoint, DefaultClientConfig.Endpoint)
}
