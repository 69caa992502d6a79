package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

// openPrivateKey reverses the salt || nonce || ciphertext blob the way a
// client holding the unlock secret would.
func openPrivateKey(t *testing.T, blob []byte, unlockSecret string) *rsa.PrivateKey {
	t.Helper()

	require.Greater(t, len(blob), kdfSaltSize)
	salt := blob[:kdfSaltSize]

	key := pbkdf2.Key([]byte(unlockSecret), salt, kdfIterations, kdfKeySize, sha256.New)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	aead, err := cipher.NewGCM(block)
	require.NoError(t, err)

	require.Greater(t, len(blob), kdfSaltSize+aead.NonceSize())
	nonce := blob[kdfSaltSize : kdfSaltSize+aead.NonceSize()]
	ciphertext := blob[kdfSaltSize+aead.NonceSize():]

	privateDER, err := aead.Open(nil, nonce, ciphertext, nil)
	require.NoError(t, err)

	parsed, err := x509.ParsePKCS8PrivateKey(privateDER)
	require.NoError(t, err)
	privateKey, ok := parsed.(*rsa.PrivateKey)
	require.True(t, ok)
	return privateKey
}

func TestKeypairService_Generate(t *testing.T) {
	service := NewKeypairService()

	t.Run("public key is valid PEM", func(t *testing.T) {
		keypair, err := service.Generate("unlock-secret")
		require.NoError(t, err)

		block, rest := pem.Decode([]byte(keypair.PublicKeyPEM))
		require.NotNil(t, block)
		assert.Equal(t, "RSA PUBLIC KEY", block.Type)
		assert.Empty(t, rest)

		publicKey, err := x509.ParsePKCS1PublicKey(block.Bytes)
		require.NoError(t, err)
		assert.Equal(t, rsaKeyBits, publicKey.N.BitLen())
	})

	t.Run("unlock secret recovers the private key", func(t *testing.T) {
		keypair, err := service.Generate("unlock-secret")
		require.NoError(t, err)

		privateKey := openPrivateKey(t, keypair.EncryptedPrivateKey, "unlock-secret")

		block, _ := pem.Decode([]byte(keypair.PublicKeyPEM))
		require.NotNil(t, block)
		publicKey, err := x509.ParsePKCS1PublicKey(block.Bytes)
		require.NoError(t, err)
		assert.True(t, publicKey.Equal(&privateKey.PublicKey))
	})

	t.Run("wrong unlock secret fails to open", func(t *testing.T) {
		keypair, err := service.Generate("unlock-secret")
		require.NoError(t, err)

		blob := keypair.EncryptedPrivateKey
		salt := blob[:kdfSaltSize]
		key := pbkdf2.Key([]byte("wrong-secret"), salt, kdfIterations, kdfKeySize, sha256.New)
		block, err := aes.NewCipher(key)
		require.NoError(t, err)
		aead, err := cipher.NewGCM(block)
		require.NoError(t, err)

		nonce := blob[kdfSaltSize : kdfSaltSize+aead.NonceSize()]
		ciphertext := blob[kdfSaltSize+aead.NonceSize():]
		_, err = aead.Open(nil, nonce, ciphertext, nil)
		assert.Error(t, err)
	})

	t.Run("each call generates a distinct keypair", func(t *testing.T) {
		first, err := service.Generate("unlock-secret")
		require.NoError(t, err)
		second, err := service.Generate("unlock-secret")
		require.NoError(t, err)

		assert.NotEqual(t, first.PublicKeyPEM, second.PublicKeyPEM)
		assert.NotEqual(t, first.EncryptedPrivateKey, second.EncryptedPrivateKey)
	})
}
