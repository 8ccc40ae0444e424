// Package sign provides the secp256k1 signing primitives used to authenticate
// requests against a Flashbots-style relay.
//
// The package exposes three small interfaces:
//
//   - Signer: signs 32-byte digests and exposes its public key
//   - PublicKey: derives the signer's address
//   - Address: a printable, comparable account address
//
// Private key material never leaves the Signer implementation.
//
// # Personal messages
//
// Relays verify the X-Flashbots-Signature header with the Ethereum
// "personal message" convention. TextHash computes that digest and
// SignMessage signs it:
//
//	signer, err := sign.NewEthereumSigner(privateKeyHex)
//	if err != nil {
//	    return err // wraps sign.ErrInvalidKey
//	}
//
//	sig, err := sign.SignMessage(signer, []byte("0x22c8e3..."))
//	if err != nil {
//	    return err // wraps sign.ErrSigningFailure
//	}
//
//	addr, err := sign.RecoverMessageSigner([]byte("0x22c8e3..."), sig)
package sign
