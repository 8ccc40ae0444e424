package sign

import (
	"github.com/ethereum/go-ethereum/common"
)

var _ Signer = (*MockSigner)(nil)

// MockSigner returns a fixed signature, or a fixed error, for every digest.
// It lets callers exercise the signing path without real keys.
type MockSigner struct {
	address EthereumAddress
	err     error
}

// NewMockSigner creates a MockSigner reporting the given address.
func NewMockSigner(addr string) *MockSigner {
	return &MockSigner{address: EthereumAddress{common.HexToAddress(addr)}}
}

// NewFailingSigner creates a MockSigner whose Sign always returns err.
func NewFailingSigner(addr string, err error) *MockSigner {
	s := NewMockSigner(addr)
	s.err = err
	return s
}

// Sign returns the digest padded into a 65-byte signature with v = 27.
func (m *MockSigner) Sign(hash []byte) (Signature, error) {
	if m.err != nil {
		return nil, m.err
	}
	sig := make(Signature, SignatureLength)
	copy(sig, hash)
	sig[64] = 27
	return sig, nil
}

func (m *MockSigner) PublicKey() PublicKey { return mockPublicKey{m.address} }

type mockPublicKey struct{ addr EthereumAddress }

func (p mockPublicKey) Address() Address { return p.addr }
func (p mockPublicKey) Bytes() []byte    { return p.addr.Bytes() }
