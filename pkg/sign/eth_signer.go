package sign

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var _ Signer = (*EthereumSigner)(nil)
var _ PublicKey = EthereumPublicKey{}
var _ Address = EthereumAddress{}

// EthereumAddress is a 20-byte account address printed with its EIP-55 checksum.
type EthereumAddress struct{ common.Address }

func (a EthereumAddress) String() string { return a.Address.Hex() }

// NewEthereumAddressFromHex parses a hex address. Invalid input yields the zero address.
func NewEthereumAddressFromHex(hexAddr string) EthereumAddress {
	return EthereumAddress{common.HexToAddress(hexAddr)}
}

// Equals returns true if this address equals the other address.
func (a EthereumAddress) Equals(other Address) bool {
	if otherAddr, ok := other.(EthereumAddress); ok {
		return a.Address == otherAddr.Address
	}
	return strings.EqualFold(a.String(), other.String())
}

// EthereumPublicKey wraps a secp256k1 public key.
type EthereumPublicKey struct{ *ecdsa.PublicKey }

func (p EthereumPublicKey) Address() Address {
	return EthereumAddress{ethcrypto.PubkeyToAddress(*p.PublicKey)}
}

func (p EthereumPublicKey) Bytes() []byte { return ethcrypto.FromECDSAPub(p.PublicKey) }

// EthereumSigner signs digests with an in-memory secp256k1 private key.
type EthereumSigner struct {
	privateKey *ecdsa.PrivateKey
	publicKey  EthereumPublicKey
}

// NewEthereumSigner creates a signer from a hex-encoded 32-byte private key.
// The 0x prefix is optional. Malformed keys wrap ErrInvalidKey.
func NewEthereumSigner(privateKeyHex string) (*EthereumSigner, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if len(privateKeyHex) != 64 {
		return nil, fmt.Errorf("%w: expected 64 hex characters, got %d", ErrInvalidKey, len(privateKeyHex))
	}

	key, err := ethcrypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return &EthereumSigner{
		privateKey: key,
		publicKey:  EthereumPublicKey{&key.PublicKey},
	}, nil
}

func (s *EthereumSigner) PublicKey() PublicKey { return s.publicKey }

// Sign signs a 32-byte digest. V is shifted from 0/1 to 27/28.
func (s *EthereumSigner) Sign(hash []byte) (Signature, error) {
	sig, err := ethcrypto.Sign(hash, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailure, err)
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return Signature(sig), nil
}

// TextHash returns keccak256("\x19Ethereum Signed Message:\n" + len(msg) + msg).
func TextHash(msg []byte) []byte {
	return accounts.TextHash(msg)
}

// SignMessage signs msg using the personal-message convention.
func SignMessage(signer Signer, msg []byte) (Signature, error) {
	sig, err := signer.Sign(TextHash(msg))
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// RecoverMessageSigner recovers the address that signed msg with SignMessage.
func RecoverMessageSigner(msg []byte, sig Signature) (Address, error) {
	return RecoverAddressFromHash(TextHash(msg), sig)
}

// RecoverAddressFromHash recovers an address from a signature over a digest.
func RecoverAddressFromHash(hash []byte, sig Signature) (Address, error) {
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("invalid signature length: got %d, want %d", len(sig), SignatureLength)
	}
	localSig := make([]byte, SignatureLength)
	copy(localSig, sig)
	if localSig[64] >= 27 {
		localSig[64] -= 27
	}
	pubKey, err := ethcrypto.SigToPub(hash, localSig)
	if err != nil {
		return nil, fmt.Errorf("signature recovery failed: %w", err)
	}
	return EthereumAddress{ethcrypto.PubkeyToAddress(*pubKey)}, nil
}
