package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
)

// Key sizes for Basic256Sha256.
const (
	basic256SigningKeyLength    = 32
	basic256EncryptionKeyLength = 32
	basic256IVLength            = 16
	basic256NonceLength         = 32
	basic256SignatureLength     = 32
)

// Basic256Sha256 carries the symmetric half of the Basic256Sha256 policy:
// P-SHA256 key derivation and HMAC-SHA256 message signatures. The
// asymmetric handshake operations require certificate plumbing that lives
// outside the core and report ErrUnsupportedOperation here, as do
// SymEncrypt and SymDecrypt.
type Basic256Sha256 struct{}

// NewBasic256Sha256 returns the policy.
func NewBasic256Sha256() Basic256Sha256 {
	return Basic256Sha256{}
}

func (Basic256Sha256) URI() string      { return PolicyURIBasic256Sha256 }
func (Basic256Sha256) NonceLength() int { return basic256NonceLength }

func (Basic256Sha256) AsymEncrypt([]byte) ([]byte, error) {
	return nil, fmt.Errorf("asym encrypt: %w", ErrUnsupportedOperation)
}

func (Basic256Sha256) AsymDecrypt([]byte) ([]byte, error) {
	return nil, fmt.Errorf("asym decrypt: %w", ErrUnsupportedOperation)
}

func (Basic256Sha256) AsymSign([]byte) ([]byte, error) {
	return nil, fmt.Errorf("asym sign: %w", ErrUnsupportedOperation)
}

func (Basic256Sha256) AsymVerify([]byte, []byte) error {
	return fmt.Errorf("asym verify: %w", ErrUnsupportedOperation)
}

func (Basic256Sha256) SymEncrypt(ChannelKeys, []byte) ([]byte, error) {
	return nil, fmt.Errorf("sym encrypt: %w", ErrUnsupportedOperation)
}

func (Basic256Sha256) SymDecrypt(ChannelKeys, []byte) ([]byte, error) {
	return nil, fmt.Errorf("sym decrypt: %w", ErrUnsupportedOperation)
}

func (Basic256Sha256) SymSign(keys ChannelKeys, data []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, keys.SigningKey)
	mac.Write(data)
	return mac.Sum(nil), nil
}

func (Basic256Sha256) SymVerify(keys ChannelKeys, data, signature []byte) error {
	mac := hmac.New(sha256.New, keys.SigningKey)
	mac.Write(data)
	if !hmac.Equal(mac.Sum(nil), signature) {
		return fmt.Errorf("sym verify: signature mismatch")
	}
	return nil
}

// DeriveKeys derives both direction's keys per the UA-SC rules: the client
// keys come from P-SHA256(serverNonce, clientNonce), the server keys from
// P-SHA256(clientNonce, serverNonce).
func (Basic256Sha256) DeriveKeys(clientNonce, serverNonce []byte) (ChannelKeys, ChannelKeys, error) {
	const total = basic256SigningKeyLength + basic256EncryptionKeyLength + basic256IVLength

	split := func(material []byte) ChannelKeys {
		return ChannelKeys{
			SigningKey:    material[:basic256SigningKeyLength],
			EncryptionKey: material[basic256SigningKeyLength : basic256SigningKeyLength+basic256EncryptionKeyLength],
			IV:            material[basic256SigningKeyLength+basic256EncryptionKeyLength:],
		}
	}
	clientKeys := split(pSHA256(serverNonce, clientNonce, total))
	serverKeys := split(pSHA256(clientNonce, serverNonce, total))
	return clientKeys, serverKeys, nil
}

// pSHA256 implements the TLS P_hash construction with HMAC-SHA256, the key
// expansion Basic256Sha256 prescribes.
func pSHA256(secret, seed []byte, length int) []byte {
	out := make([]byte, 0, length)
	a := seed
	for len(out) < length {
		mac := hmac.New(sha256.New, secret)
		mac.Write(a)
		a = mac.Sum(nil)

		mac = hmac.New(sha256.New, secret)
		mac.Write(a)
		mac.Write(seed)
		out = append(out, mac.Sum(nil)...)
	}
	return out[:length]
}
