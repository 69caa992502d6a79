// Package service provides user-side cryptographic operations: generation of
// the RSA keypair that conversation keys are wrapped under.
package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"io"

	"golang.org/x/crypto/pbkdf2"

	apperrors "github.com/allisson/chatkeys/internal/errors"
)

const (
	rsaKeyBits = 2048

	// PBKDF2 parameters for deriving the private-key encryption key from the
	// user's unlock secret.
	kdfIterations = 600_000
	kdfSaltSize   = 16
	kdfKeySize    = 32
)

// Keypair holds a freshly generated keypair: the public half as PEM and the
// private half encrypted under the user's unlock secret. The blob layout is
// salt || nonce || ciphertext; only someone knowing the secret can recover
// the private key, the server never can.
type Keypair struct {
	PublicKeyPEM        string
	EncryptedPrivateKey []byte
}

// KeypairGenerator defines keypair generation for user provisioning.
type KeypairGenerator interface {
	// Generate creates an RSA-2048 keypair and seals the private half under
	// the unlock secret.
	Generate(unlockSecret string) (*Keypair, error)
}

// keypairService implements KeypairGenerator.
type keypairService struct {
	rand io.Reader
}

// NewKeypairService creates a new keypair generation service.
func NewKeypairService() KeypairGenerator {
	return &keypairService{rand: rand.Reader}
}

// Generate creates an RSA-2048 keypair and seals the private half.
func (s *keypairService) Generate(unlockSecret string) (*Keypair, error) {
	privateKey, err := rsa.GenerateKey(s.rand, rsaKeyBits)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate keypair")
	}

	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&privateKey.PublicKey),
	})

	privateDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal private key")
	}

	blob, err := s.sealPrivateKey(privateDER, unlockSecret)
	if err != nil {
		return nil, err
	}

	return &Keypair{
		PublicKeyPEM:        string(publicPEM),
		EncryptedPrivateKey: blob,
	}, nil
}

// sealPrivateKey encrypts the PKCS#8 DER under a PBKDF2-derived key with
// AES-256-GCM and returns salt || nonce || ciphertext.
func (s *keypairService) sealPrivateKey(privateDER []byte, unlockSecret string) ([]byte, error) {
	salt := make([]byte, kdfSaltSize)
	if _, err := io.ReadFull(s.rand, salt); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate salt")
	}

	key := pbkdf2.Key([]byte(unlockSecret), salt, kdfIterations, kdfKeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create cipher")
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(s.rand, nonce); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate nonce")
	}

	blob := make([]byte, 0, len(salt)+len(nonce)+len(privateDER)+aead.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = aead.Seal(blob, nonce, privateDER, nil)

	return blob, nil
}
