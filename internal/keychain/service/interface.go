// Package service provides the cryptographic operations of the key chain:
// symmetric key generation, envelope wrapping under recipient public keys and
// sealing of rotation-marker payloads.
package service

// Envelope defines the stateless cryptographic operations used by rotations.
type Envelope interface {
	// GenerateKey returns a fresh random 256-bit conversation key.
	GenerateKey() ([]byte, error)

	// Wrap encrypts a symmetric key under a recipient's PEM-encoded RSA
	// public key using OAEP with SHA-256. Empty or unparseable key material
	// is reported as domain.ErrInvalidKeyMaterial so callers can tell
	// not-yet-provisioned users apart from real crypto failures.
	Wrap(symmetricKey []byte, publicKeyPEM string) ([]byte, error)

	// SealMarker encrypts the fixed rotation-marker payload with the
	// conversation key using AES-256-GCM and returns base64(nonce || ciphertext).
	SealMarker(symmetricKey []byte) (string, error)

	// OpenMarker reverses SealMarker given the matching conversation key.
	OpenMarker(symmetricKey []byte, content string) ([]byte, error)
}
