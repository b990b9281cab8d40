package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newHasher(t *testing.T) *password.Bcrypt {
	t.Helper()
	h, err := password.NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "branstark@gmail.com", NormalizeEmail("  BranStark@Gmail.com "))
}

func TestCredentialStore_Create(t *testing.T) {
	ctx := context.Background()
	h := newHasher(t)
	s := NewCredentialStore(users.NewMemoryRepository(), h)

	u, err := s.Create(ctx, "BranStark@gmail.com", "mypassword", "Bran Stark", "")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "branstark@gmail.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "mypassword", u.PasswordHash)
	assert.True(t, h.Verify("mypassword", u.PasswordHash))
	assert.False(t, u.CreatedAt.IsZero())
}

func TestCredentialStore_CreateAdmin(t *testing.T) {
	s := NewCredentialStore(users.NewMemoryRepository(), newHasher(t))

	u, err := s.Create(context.Background(), "a@b.co", "mypassword", "", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestCredentialStore_CreateUnknownRole(t *testing.T) {
	s := NewCredentialStore(users.NewMemoryRepository(), newHasher(t))

	_, err := s.Create(context.Background(), "a@b.co", "mypassword", "", "root")
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestCredentialStore_DuplicateIgnoresCase(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore(users.NewMemoryRepository(), newHasher(t))

	_, err := s.Create(ctx, "branstark@gmail.com", "mypassword", "", "")
	require.NoError(t, err)

	_, err = s.Create(ctx, " BRANSTARK@gmail.com", "other-password", "", "")
	require.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestCredentialStore_FindByEmail(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore(users.NewMemoryRepository(), newHasher(t))

	u, err := s.FindByEmail(ctx, "nobody@gmail.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	created, err := s.Create(ctx, "branstark@gmail.com", "mypassword", "", "")
	require.NoError(t, err)

	u, err = s.FindByEmail(ctx, "BranStark@gmail.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, created.ID, u.ID)
}
