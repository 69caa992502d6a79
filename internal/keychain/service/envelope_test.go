package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/chatkeys/internal/errors"
	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
)

// generateTestPublicKeyPEM returns a fresh RSA keypair and its PKCS#1 PEM
// public half, matching the format produced at keypair provisioning.
func generateTestPublicKeyPEM(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&privateKey.PublicKey),
	})
	return privateKey, string(publicPEM)
}

func TestEnvelopeService_GenerateKey(t *testing.T) {
	envelope := NewEnvelopeService()

	key1, err := envelope.GenerateKey()
	require.NoError(t, err)
	assert.Len(t, key1, keychainDomain.SymmetricKeySize)

	key2, err := envelope.GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, key1, key2)
}

func TestEnvelopeService_Wrap(t *testing.T) {
	envelope := NewEnvelopeService()

	t.Run("recipient can unwrap with private key", func(t *testing.T) {
		privateKey, publicPEM := generateTestPublicKeyPEM(t)

		symmetricKey, err := envelope.GenerateKey()
		require.NoError(t, err)

		wrapped, err := envelope.Wrap(symmetricKey, publicPEM)
		require.NoError(t, err)
		assert.NotEqual(t, symmetricKey, wrapped)

		unwrapped, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, privateKey, wrapped, nil)
		require.NoError(t, err)
		assert.Equal(t, symmetricKey, unwrapped)
	})

	t.Run("pkix public key is accepted", func(t *testing.T) {
		privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
		require.NoError(t, err)
		publicPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

		symmetricKey, err := envelope.GenerateKey()
		require.NoError(t, err)

		_, err = envelope.Wrap(symmetricKey, publicPEM)
		assert.NoError(t, err)
	})

	t.Run("empty public key", func(t *testing.T) {
		symmetricKey, err := envelope.GenerateKey()
		require.NoError(t, err)

		_, err = envelope.Wrap(symmetricKey, "")
		assert.ErrorIs(t, err, keychainDomain.ErrInvalidKeyMaterial)
	})

	t.Run("garbage public key", func(t *testing.T) {
		symmetricKey, err := envelope.GenerateKey()
		require.NoError(t, err)

		_, err = envelope.Wrap(symmetricKey, "not a pem block")
		assert.ErrorIs(t, err, keychainDomain.ErrInvalidKeyMaterial)
	})

	t.Run("wrong pem block type", func(t *testing.T) {
		symmetricKey, err := envelope.GenerateKey()
		require.NoError(t, err)

		badPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("junk")}))
		_, err = envelope.Wrap(symmetricKey, badPEM)
		assert.ErrorIs(t, err, keychainDomain.ErrInvalidKeyMaterial)
	})
}

func TestEnvelopeService_SealAndOpenMarker(t *testing.T) {
	envelope := NewEnvelopeService()

	t.Run("roundtrip", func(t *testing.T) {
		key, err := envelope.GenerateKey()
		require.NoError(t, err)

		sealed, err := envelope.SealMarker(key)
		require.NoError(t, err)
		assert.NotEmpty(t, sealed)

		plaintext, err := envelope.OpenMarker(key, sealed)
		require.NoError(t, err)
		assert.Equal(t, keychainDomain.MarkerPlaintext, string(plaintext))
	})

	t.Run("each seal uses a fresh nonce", func(t *testing.T) {
		key, err := envelope.GenerateKey()
		require.NoError(t, err)

		sealed1, err := envelope.SealMarker(key)
		require.NoError(t, err)
		sealed2, err := envelope.SealMarker(key)
		require.NoError(t, err)
		assert.NotEqual(t, sealed1, sealed2)
	})

	t.Run("wrong key cannot open", func(t *testing.T) {
		key, err := envelope.GenerateKey()
		require.NoError(t, err)
		otherKey, err := envelope.GenerateKey()
		require.NoError(t, err)

		sealed, err := envelope.SealMarker(key)
		require.NoError(t, err)

		_, err = envelope.OpenMarker(otherKey, sealed)
		assert.Error(t, err)
	})

	t.Run("key must be 32 bytes", func(t *testing.T) {
		_, err := envelope.SealMarker([]byte("short"))
		assert.Error(t, err)
	})

	t.Run("content too short", func(t *testing.T) {
		key, err := envelope.GenerateKey()
		require.NoError(t, err)

		_, err = envelope.OpenMarker(key, "QQ==")
		assert.Error(t, err)
		assert.False(t, apperrors.Is(err, keychainDomain.ErrInvalidKeyMaterial))
	})

	t.Run("content not base64", func(t *testing.T) {
		key, err := envelope.GenerateKey()
		require.NoError(t, err)

		_, err = envelope.OpenMarker(key, "%%%not-base64%%%")
		assert.Error(t, err)
	})
}
