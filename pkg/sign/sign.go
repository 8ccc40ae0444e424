package sign

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrInvalidKey is returned when a private key is not a 32-byte hex scalar.
	ErrInvalidKey = errors.New("invalid signing key")
	// ErrSigningFailure is returned when the underlying crypto library fails to sign.
	ErrSigningFailure = errors.New("signing failure")
)

// Signer signs 32-byte digests.
type Signer interface {
	PublicKey() PublicKey                // Public key associated with this signer.
	Sign(hash []byte) (Signature, error) // Sign expects a digest, not a raw message.
}

// PublicKey is the public half of a Signer.
type PublicKey interface {
	Address() Address
	Bytes() []byte
}

// Address identifies the owner of a key.
type Address interface {
	fmt.Stringer

	// Equals returns true if this address equals the other address.
	Equals(other Address) bool
}

// Signature is a 65-byte recoverable signature laid out as r || s || v.
type Signature []byte

// SignatureLength is the length of a recoverable secp256k1 signature.
const SignatureLength = 65

// String returns the 0x-prefixed lowercase hex encoding of the signature.
func (s Signature) String() string {
	return hexutil.Encode(s)
}

// Hex returns the lowercase hex encoding without the 0x prefix.
func (s Signature) Hex() string {
	return strings.TrimPrefix(hexutil.Encode(s), "0x")
}

// MarshalJSON encodes the signature as a 0x-prefixed hex string.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a 0x-prefixed hex string.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	decoded, err := hexutil.Decode(hexStr)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// ParseSignature decodes a hex signature with or without the 0x prefix.
func ParseSignature(hexSig string) (Signature, error) {
	if !strings.HasPrefix(hexSig, "0x") && !strings.HasPrefix(hexSig, "0X") {
		hexSig = "0x" + hexSig
	}
	decoded, err := hexutil.Decode(hexSig)
	if err != nil {
		return nil, err
	}
	if len(decoded) != SignatureLength {
		return nil, errors.New("invalid signature length")
	}
	return Signature(decoded), nil
}
