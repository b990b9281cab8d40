package tokens

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = Config{
	Secret:     []byte("test-secret"),
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 30 * 24 * time.Hour,
}

var testUser = &models.User{ID: "5947397b323ae82d8c3a333b", Email: "branstark@gmail.com", Role: models.RoleUser}

type failingStore struct {
	refreshtokens.Repository
	err error
}

func (f failingStore) Create(context.Context, *models.RefreshToken) error { return f.err }

func TestConfigFrom(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	got := ConfigFrom(cfg)
	assert.Equal(t, []byte(cfg.SecretKey), got.Secret)
	assert.Equal(t, 15*time.Minute, got.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, got.RefreshTTL)
}

func TestIssueAccessToken(t *testing.T) {
	iss := New(testCfg, refreshtokens.NewMemoryRepository())

	token, expiresIn, err := iss.IssueAccessToken(testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(900), expiresIn)

	claims, err := auth.ParseToken(token, testCfg.Secret)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.Subject)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestIssueRefreshToken_Format(t *testing.T) {
	iss := New(testCfg, refreshtokens.NewMemoryRepository())
	re := regexp.MustCompile(`^` + testUser.ID + `\.[0-9a-f]{80}$`)

	a, err := iss.IssueRefreshToken(testUser)
	require.NoError(t, err)
	b, err := iss.IssueRefreshToken(testUser)
	require.NoError(t, err)

	assert.Regexp(t, re, a)
	assert.Regexp(t, re, b)
	assert.NotEqual(t, a, b)
}

func TestIssueTokenPair_PersistsRefreshRecord(t *testing.T) {
	ctx := context.Background()
	store := refreshtokens.NewMemoryRepository()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iss := New(testCfg, store).WithClock(func() time.Time { return now })

	pair, err := iss.IssueTokenPair(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)
	assert.True(t, strings.HasPrefix(pair.RefreshToken, testUser.ID+"."))

	rec, err := store.FindOne(ctx, pair.RefreshToken, testUser.Email)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, rec.UserID)
	assert.Equal(t, now.Add(testCfg.RefreshTTL), rec.Expires)
}

func TestIssueTokenPair_StoreError(t *testing.T) {
	boom := errors.New("boom")
	iss := New(testCfg, failingStore{err: boom})

	pair, err := iss.IssueTokenPair(context.Background(), testUser)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, pair)
}

func TestWithStore_DoesNotMutateOriginal(t *testing.T) {
	ctx := context.Background()
	orig := refreshtokens.NewMemoryRepository()
	other := refreshtokens.NewMemoryRepository()
	iss := New(testCfg, orig)

	pair, err := iss.WithStore(other).IssueTokenPair(ctx, testUser)
	require.NoError(t, err)

	_, err = other.FindOne(ctx, pair.RefreshToken, testUser.Email)
	require.NoError(t, err)
	_, err = orig.FindOne(ctx, pair.RefreshToken, testUser.Email)
	require.Error(t, err)
}

func TestIssueTokenPair_EmptyUserID(t *testing.T) {
	iss := New(testCfg, refreshtokens.NewMemoryRepository())
	_, err := iss.IssueTokenPair(context.Background(), &models.User{Email: "a@b.c"})
	require.Error(t, err)
}

func TestParseAccessToken(t *testing.T) {
	iss := New(testCfg, refreshtokens.NewMemoryRepository())

	token, _, err := iss.IssueAccessToken(testUser)
	require.NoError(t, err)

	claims, err := iss.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.Subject)

	other := New(Config{Secret: []byte("other"), AccessTTL: time.Minute}, nil)
	_, err = other.ParseAccessToken(token)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
