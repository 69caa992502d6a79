package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	apperrors "github.com/allisson/chatkeys/internal/errors"
	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
)

// EnvelopeService implements Envelope using RSA-OAEP-SHA256 for wrapping and
// AES-256-GCM for sealing the rotation-marker payload.
//
// The service is stateless and safe for concurrent use. Unwrapping is never
// performed here: the private halves of recipient keypairs are stored
// encrypted under user secrets and only clients can open a wrapped key.
type EnvelopeService struct{}

// NewEnvelopeService creates a new EnvelopeService instance.
func NewEnvelopeService() *EnvelopeService {
	return &EnvelopeService{}
}

// GenerateKey returns a fresh random 256-bit conversation key.
func (e *EnvelopeService) GenerateKey() ([]byte, error) {
	key := make([]byte, keychainDomain.SymmetricKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate conversation key: %w", err)
	}
	return key, nil
}

// Wrap encrypts a symmetric key under a recipient's PEM-encoded RSA public key.
func (e *EnvelopeService) Wrap(symmetricKey []byte, publicKeyPEM string) ([]byte, error) {
	pub, err := parseRSAPublicKey(publicKeyPEM)
	if err != nil {
		return nil, err
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, symmetricKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap conversation key: %w", err)
	}

	return wrapped, nil
}

// SealMarker encrypts the fixed marker payload with the conversation key.
// The random nonce is prepended to the ciphertext so a key holder can
// regenerate the keystream; the result is base64 encoded for binary-safe
// storage in the message log.
func (e *EnvelopeService) SealMarker(symmetricKey []byte) (string, error) {
	aead, err := newGCM(symmetricKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(keychainDomain.MarkerPlaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenMarker decrypts a sealed rotation-marker payload with the conversation key.
func (e *EnvelopeService) OpenMarker(symmetricKey []byte, content string) ([]byte, error) {
	aead, err := newGCM(symmetricKey)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode marker content: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return nil, apperrors.New("marker content is too short")
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open marker: %w", err)
	}

	return plaintext, nil
}

// newGCM builds an AES-256-GCM cipher for a conversation key.
func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != keychainDomain.SymmetricKeySize {
		return nil, apperrors.New("conversation key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aead, nil
}

// parseRSAPublicKey decodes a PEM public key in either PKCS#1 or PKIX form.
// All parse failures map to ErrInvalidKeyMaterial: a malformed stored key is a
// provisioning problem, not a crypto failure.
func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	if publicKeyPEM == "" {
		return nil, keychainDomain.ErrInvalidKeyMaterial
	}

	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, keychainDomain.ErrInvalidKeyMaterial
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, keychainDomain.ErrInvalidKeyMaterial
		}
		return pub, nil
	case "PUBLIC KEY":
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, keychainDomain.ErrInvalidKeyMaterial
		}
		pub, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, keychainDomain.ErrInvalidKeyMaterial
		}
		return pub, nil
	default:
		return nil, keychainDomain.ErrInvalidKeyMaterial
	}
}
