package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/chatkeys/internal/testutil"
	"github.com/allisson/chatkeys/internal/user/domain"
)

func TestMySQLUserRepository_Create(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLUserRepository(db)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		user := newTestUser("alice")
		require.NoError(t, repo.Create(ctx, user))

		found, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, "alice", found.Name)
	})

	t.Run("duplicate name", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newTestUser("bob")))

		err := repo.Create(ctx, newTestUser("bob"))
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})
}

func TestMySQLUserRepository_ListByIDs(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLUserRepository(db)
	ctx := context.Background()

	alice := newTestUser("alice")
	bob := newTestUser("bob")
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))

	users, err := repo.ListByIDs(ctx, []uuid.UUID{alice.ID, bob.ID, uuid.Must(uuid.NewV7())})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestMySQLUserRepository_UpdateKeys(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLUserRepository(db)
	ctx := context.Background()

	user := newTestUser("alice")
	require.NoError(t, repo.Create(ctx, user))

	user.PublicKey = "-----BEGIN RSA PUBLIC KEY-----\nfake\n-----END RSA PUBLIC KEY-----\n"
	user.EncryptedPrivateKey = []byte("sealed-private-key")
	require.NoError(t, repo.UpdateKeys(ctx, user))

	found, err := repo.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.PublicKey, found.PublicKey)
	assert.Equal(t, user.EncryptedPrivateKey, found.EncryptedPrivateKey)
}
