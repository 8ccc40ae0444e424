// Package rpc is a client for the Flashbots relay JSON-RPC API.
//
// Every request is serialized to a canonical JSON body, hashed with
// Keccak-256 and signed as an Ethereum personal message over the hex digest.
// The result is sent in the X-Flashbots-Signature header alongside the exact
// bytes that were signed:
//
//	signer, _ := sign.NewEthereumSigner(privateKeyHex)
//	client := rpc.NewClient(rpc.DefaultClientConfig, rpc.NewHTTPTransport(nil))
//	res, err := client.SendBundle(ctx, signer, rpc.SendBundleParams{
//		Txs:         []string{rawTx},
//		BlockNumber: "0xcaa6fa",
//	})
//
// Responses are classified into a relay error or the method's result type.
// Callers tell failures apart with errors.Is and errors.As:
//
//   - ErrInvalidKey and ErrSigningFailure: the request was never sent.
//   - ErrInvalidParams: params failed local validation; nothing was sent.
//   - *TransportError: the exchange failed at the network level.
//   - *MalformedResponseError: the relay answered with an unexpected body.
//   - *RelayError: the relay rejected the call with a code and message.
//
// Calls are never retried.
package rpc
