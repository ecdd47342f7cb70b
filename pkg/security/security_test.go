package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/opcuad/pkg/ua"
)

func TestDeterministicNonceSource(t *testing.T) {
	src := DeterministicNonceSource{Seed: 7}
	a, err := src.GenerateNonce(8)
	require.NoError(t, err)
	b, err := src.GenerateNonce(8)
	require.NoError(t, err)
	assert.Equal(t, a, b, "deterministic source repeats")
	assert.Equal(t, byte(7), a[0])
	assert.Len(t, a, 8)
}

func TestRandomNonceSource(t *testing.T) {
	src := RandomNonceSource{}
	a, err := src.GenerateNonce(32)
	require.NoError(t, err)
	b, err := src.GenerateNonce(32)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	p, ok := r.Lookup(PolicyURINone)
	require.True(t, ok)
	assert.Equal(t, PolicyURINone, p.URI())

	// The empty URI selects None.
	p, ok = r.Lookup("")
	require.True(t, ok)
	assert.Equal(t, PolicyURINone, p.URI())

	_, ok = r.Lookup("http://opcfoundation.org/UA/SecurityPolicy#Unknown")
	assert.False(t, ok)
}

func TestBasic256Sha256DeriveKeys(t *testing.T) {
	p := NewBasic256Sha256()
	clientNonce := make([]byte, 32)
	serverNonce := make([]byte, 32)
	for i := range clientNonce {
		clientNonce[i] = byte(i)
		serverNonce[i] = byte(255 - i)
	}

	clientKeys, serverKeys, err := p.DeriveKeys(clientNonce, serverNonce)
	require.NoError(t, err)
	assert.Len(t, clientKeys.SigningKey, 32)
	assert.Len(t, clientKeys.EncryptionKey, 32)
	assert.Len(t, clientKeys.IV, 16)
	assert.NotEqual(t, clientKeys.SigningKey, serverKeys.SigningKey,
		"the two directions derive distinct keys")

	// Derivation is deterministic.
	again, _, err := p.DeriveKeys(clientNonce, serverNonce)
	require.NoError(t, err)
	assert.Equal(t, clientKeys.SigningKey, again.SigningKey)
}

func TestBasic256Sha256SymSignVerify(t *testing.T) {
	p := NewBasic256Sha256()
	keys := ChannelKeys{SigningKey: make([]byte, 32)}
	data := []byte("message body")

	sig, err := p.SymSign(keys, data)
	require.NoError(t, err)
	assert.Len(t, sig, basic256SignatureLength)
	assert.NoError(t, p.SymVerify(keys, data, sig))
	assert.Error(t, p.SymVerify(keys, []byte("tampered"), sig))
}

func TestDefaultAccessControlAnonymous(t *testing.T) {
	ac := NewDefaultAccessControl(true)
	assert.Equal(t, ua.StatusGood, ac.ActivateSession(UserIdentity{Anonymous: true}))

	denied := NewDefaultAccessControl(false)
	assert.Equal(t, ua.StatusBadIdentityTokenRejected,
		denied.ActivateSession(UserIdentity{Anonymous: true}))
}

func TestDefaultAccessControlPassword(t *testing.T) {
	ac := NewDefaultAccessControl(false)
	require.NoError(t, ac.AddUser("operator", "hunter2"))

	assert.True(t, ac.VerifyPassword("operator", []byte("hunter2")))
	assert.False(t, ac.VerifyPassword("operator", []byte("wrong")))
	assert.False(t, ac.VerifyPassword("ghost", []byte("hunter2")))
}

func TestTrustListCertificateGroup(t *testing.T) {
	dir := t.TempDir()
	cert := []byte{0x30, 0x82, 0x01, 0x02, 0xAA, 0xBB}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "peer.der"), cert, 0644))

	g, err := NewTrustListCertificateGroup(dir)
	require.NoError(t, err)
	defer g.Close()

	assert.Equal(t, ua.StatusGood, g.Verify(cert))
	assert.Equal(t, ua.StatusBadCertificateUntrusted, g.Verify([]byte{0x01}))
	assert.Equal(t, ua.StatusBadCertificateInvalid, g.Verify(nil))
}

func TestPermissiveCertificateGroup(t *testing.T) {
	g := NewPermissiveCertificateGroup()
	assert.Equal(t, ua.StatusGood, g.Verify([]byte{1, 2, 3}))
	assert.NoError(t, g.Close())
}
