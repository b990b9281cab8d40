// Package tokens composes the token pair handed to clients: a signed access
// token plus an opaque refresh token that is persisted server-side.
package tokens

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
)

const (
	TokenType = "Bearer"

	// refreshTokenRandomBytes is hex encoded, giving 80 characters after the
	// user ID prefix.
	refreshTokenRandomBytes = 40
)

type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Secret:     []byte(cfg.SecretKey),
		AccessTTL:  cfg.AccessTokenValidityDuration,
		RefreshTTL: cfg.RefreshTokenValidityDuration,
	}
}

// Issuer mints token pairs and records refresh tokens in its store.
type Issuer struct {
	cfg   Config
	store refreshtokens.Repository
	now   func() time.Time
}

func New(cfg Config, store refreshtokens.Repository) *Issuer {
	return &Issuer{cfg: cfg, store: store, now: time.Now}
}

// WithStore returns a copy of the issuer that persists into store, typically
// a transaction-scoped repository.
func (i *Issuer) WithStore(store refreshtokens.Repository) *Issuer {
	c := *i
	c.store = store
	return &c
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	c := *i
	c.now = now
	return &c
}

// IssueAccessToken returns a signed access token for user and its lifetime
// in seconds.
func (i *Issuer) IssueAccessToken(user *models.User) (string, int64, error) {
	token, err := auth.GenerateToken(user.ID, user.Role, i.cfg.Secret, i.now(), i.cfg.AccessTTL)
	if err != nil {
		return "", 0, err
	}
	return token, int64(i.cfg.AccessTTL / time.Second), nil
}

// ParseAccessToken verifies an access token minted by IssueAccessToken.
func (i *Issuer) ParseAccessToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, i.cfg.Secret)
}

func (i *Issuer) IssueRefreshToken(user *models.User) (string, error) {
	suffix, err := common.MakeRandHexString(refreshTokenRandomBytes)
	if err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return user.ID + "." + suffix, nil
}

// IssueTokenPair mints both tokens and persists the refresh record. Nothing
// is stored when minting fails.
func (i *Issuer) IssueTokenPair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	access, expiresIn, err := i.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := i.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		Token:     refresh,
		UserID:    user.ID,
		UserEmail: user.Email,
		Expires:   i.now().Add(i.cfg.RefreshTTL),
	}
	if err := i.store.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &models.TokenPair{
		TokenType:    TokenType,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	}, nil
}
