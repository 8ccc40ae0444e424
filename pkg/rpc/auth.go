package rpc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/0xpanoramix/flashbots-relay/pkg/sign"
)

// SignatureHeader carries the AuthHeader of a request.
const SignatureHeader = "X-Flashbots-Signature"

// AuthHeader is the value of SignatureHeader: "<address>:0x<signature>".
// It is derived from one specific body and must not be reused.
type AuthHeader string

// SignBody authenticates body for the relay.
//
// The body is hashed with Keccak-256 and the digest is rendered as a
// 0x-prefixed, 66-character lowercase hex string. That string, not the raw
// digest, is signed as an Ethereum personal message.
func SignBody(signer sign.Signer, body []byte) (AuthHeader, error) {
	if signer == nil {
		return "", fmt.Errorf("%w: nil signer", ErrInvalidKey)
	}

	digestHex := crypto.Keccak256Hash(body).Hex()
	sig, err := sign.SignMessage(signer, []byte(digestHex))
	if err != nil {
		if !errors.Is(err, ErrSigningFailure) {
			err = fmt.Errorf("%w: %w", ErrSigningFailure, err)
		}
		return "", err
	}
	if len(sig) != sign.SignatureLength {
		return "", fmt.Errorf("%w: unexpected signature length %d", ErrSigningFailure, len(sig))
	}

	return AuthHeader(signer.PublicKey().Address().String() + ":" + sig.String()), nil
}

// String returns the header value.
func (h AuthHeader) String() string {
	return string(h)
}

// ParseAuthHeader validates value and returns it as an AuthHeader.
func ParseAuthHeader(value string) (AuthHeader, error) {
	h := AuthHeader(value)
	if _, _, err := h.parse(); err != nil {
		return "", err
	}
	return h, nil
}

// Address returns the address the header claims signed the body, or the zero
// address when the header is malformed.
func (h AuthHeader) Address() sign.EthereumAddress {
	addr, _, _ := h.parse()
	return addr
}

// Signature returns the signature part of the header, or nil when the header
// is malformed.
func (h AuthHeader) Signature() sign.Signature {
	_, sig, _ := h.parse()
	return sig
}

func (h AuthHeader) parse() (sign.EthereumAddress, sign.Signature, error) {
	addrHex, sigHex, ok := strings.Cut(string(h), ":")
	if !ok {
		return sign.EthereumAddress{}, nil, fmt.Errorf("%w: missing separator", ErrInvalidAuthHeader)
	}
	if !common.IsHexAddress(addrHex) {
		return sign.EthereumAddress{}, nil, fmt.Errorf("%w: bad address %q", ErrInvalidAuthHeader, addrHex)
	}
	if !strings.HasPrefix(sigHex, "0x") {
		return sign.EthereumAddress{}, nil, fmt.Errorf("%w: signature must be 0x-prefixed", ErrInvalidAuthHeader)
	}
	sig, err := sign.ParseSignature(sigHex)
	if err != nil {
		return sign.EthereumAddress{}, nil, fmt.Errorf("%w: %w", ErrInvalidAuthHeader, err)
	}
	return sign.NewEthereumAddressFromHex(addrHex), sig, nil
}

// Verify checks that the header was produced by SignBody over body by the
// address it names. This is the check a relay performs on receipt.
func (h AuthHeader) Verify(body []byte) error {
	claimed, sig, err := h.parse()
	if err != nil {
		return err
	}

	digestHex := crypto.Keccak256Hash(body).Hex()
	recovered, err := sign.RecoverMessageSigner([]byte(digestHex), sig)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAuthHeader, err)
	}
	if !recovered.Equals(claimed) {
		return fmt.Errorf("%w: signed by %s, header claims %s", ErrInvalidAuthHeader, recovered, claimed)
	}
	return nil
}
