// Package security provides the capability interfaces the server core
// consumes for cryptography and authorization: SecurityPolicy,
// AccessControl and CertificateGroup, plus the nonce source.
//
// The core never touches cryptographic primitives directly; it negotiates a
// policy by URI and calls through the interface. Policy None is the
// complete built-in implementation; Basic256Sha256 carries the symmetric
// half (key derivation and HMAC signatures) for deployments that terminate
// the asymmetric handshake in front of the server.
package security

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// Well-known security policy URIs.
const (
	PolicyURINone            = "http://opcfoundation.org/UA/SecurityPolicy#None"
	PolicyURIBasic256Sha256  = "http://opcfoundation.org/UA/SecurityPolicy#Basic256Sha256"
)

// ErrUnsupportedOperation is returned by policies for operations outside
// their capability set.
var ErrUnsupportedOperation = errors.New("security: operation not supported by policy")

// ChannelKeys holds the symmetric key material derived for one token.
type ChannelKeys struct {
	SigningKey    []byte
	EncryptionKey []byte
	IV            []byte
}

// Policy is the capability interface for a security policy. The server
// selects a policy per channel from the OPN request's policy URI.
type Policy interface {
	// URI returns the policy URI.
	URI() string
	// NonceLength returns the required nonce length in bytes.
	NonceLength() int

	// Asymmetric operations, used during OPN under Sign/SignAndEncrypt.
	AsymEncrypt(plaintext []byte) ([]byte, error)
	AsymDecrypt(ciphertext []byte) ([]byte, error)
	AsymSign(data []byte) ([]byte, error)
	AsymVerify(data, signature []byte) error

	// Symmetric operations on MSG chunks.
	SymEncrypt(keys ChannelKeys, plaintext []byte) ([]byte, error)
	SymDecrypt(keys ChannelKeys, ciphertext []byte) ([]byte, error)
	SymSign(keys ChannelKeys, data []byte) ([]byte, error)
	SymVerify(keys ChannelKeys, data, signature []byte) error

	// DeriveKeys derives the per-direction symmetric keys from the
	// exchanged nonces.
	DeriveKeys(clientNonce, serverNonce []byte) (clientKeys, serverKeys ChannelKeys, err error)
}

// NonceSource produces channel nonces. The default draws from crypto/rand;
// tests substitute a deterministic source.
type NonceSource interface {
	GenerateNonce(length int) ([]byte, error)
}

// RandomNonceSource is the production nonce source.
type RandomNonceSource struct{}

func (RandomNonceSource) GenerateNonce(length int) ([]byte, error) {
	nonce := make([]byte, length)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return nonce, nil
}

// DeterministicNonceSource yields a repeating byte pattern for tests.
type DeterministicNonceSource struct {
	Seed byte
}

func (d DeterministicNonceSource) GenerateNonce(length int) ([]byte, error) {
	nonce := make([]byte, length)
	for i := range nonce {
		nonce[i] = d.Seed + byte(i)
	}
	return nonce, nil
}

// PolicyNone implements the None policy: no encryption, no signatures,
// 32-byte nonces so session nonce rules still hold.
type PolicyNone struct{}

func (PolicyNone) URI() string      { return PolicyURINone }
func (PolicyNone) NonceLength() int { return 32 }

func (PolicyNone) AsymEncrypt(plaintext []byte) ([]byte, error)  { return plaintext, nil }
func (PolicyNone) AsymDecrypt(ciphertext []byte) ([]byte, error) { return ciphertext, nil }
func (PolicyNone) AsymSign(data []byte) ([]byte, error)          { return nil, nil }
func (PolicyNone) AsymVerify(data, signature []byte) error       { return nil }

func (PolicyNone) SymEncrypt(_ ChannelKeys, plaintext []byte) ([]byte, error) {
	return plaintext, nil
}
func (PolicyNone) SymDecrypt(_ ChannelKeys, ciphertext []byte) ([]byte, error) {
	return ciphertext, nil
}
func (PolicyNone) SymSign(_ ChannelKeys, data []byte) ([]byte, error)    { return nil, nil }
func (PolicyNone) SymVerify(_ ChannelKeys, data, signature []byte) error { return nil }

func (PolicyNone) DeriveKeys(clientNonce, serverNonce []byte) (ChannelKeys, ChannelKeys, error) {
	return ChannelKeys{}, ChannelKeys{}, nil
}

// Registry maps policy URIs to implementations.
type Registry struct {
	policies map[string]Policy
}

// NewRegistry returns a registry with the built-in policies installed.
func NewRegistry() *Registry {
	r := &Registry{policies: make(map[string]Policy)}
	r.Register(PolicyNone{})
	r.Register(NewBasic256Sha256())
	return r
}

// Register installs a policy.
func (r *Registry) Register(p Policy) {
	r.policies[p.URI()] = p
}

// Lookup resolves a policy URI. The empty URI selects None.
func (r *Registry) Lookup(uri string) (Policy, bool) {
	if uri == "" {
		uri = PolicyURINone
	}
	p, ok := r.policies[uri]
	return p, ok
}
