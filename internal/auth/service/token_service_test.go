package service

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_GenerateToken(t *testing.T) {
	service := NewTokenService()

	t.Run("token is 32 random bytes, base64 URL-encoded", func(t *testing.T) {
		plainToken, tokenHash, err := service.GenerateToken()
		require.NoError(t, err)

		decoded, err := base64.URLEncoding.DecodeString(plainToken)
		require.NoError(t, err)
		assert.Len(t, decoded, 32)
		assert.Equal(t, service.HashToken(plainToken), tokenHash)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		first, _, err := service.GenerateToken()
		require.NoError(t, err)
		second, _, err := service.GenerateToken()
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func TestTokenService_HashToken(t *testing.T) {
	service := NewTokenService()

	t.Run("hash is hex-encoded SHA-256", func(t *testing.T) {
		sum := sha256.Sum256([]byte("my-token"))
		assert.Equal(t, hex.EncodeToString(sum[:]), service.HashToken("my-token"))
	})

	t.Run("hashing is deterministic", func(t *testing.T) {
		assert.Equal(t, service.HashToken("my-token"), service.HashToken("my-token"))
		assert.NotEqual(t, service.HashToken("my-token"), service.HashToken("other-token"))
	})
}
