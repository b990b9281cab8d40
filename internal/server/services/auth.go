package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/obs"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/tokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/validation"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

type RefreshInput struct {
	Email        string
	RefreshToken string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token models.TokenPair `json:"token"`
	User  models.Profile   `json:"user"`
}

// AuthService implements registration, login and refresh-token rotation.
//
// Errors returned are common.ErrEmailExists, common.ErrInvalidCredentials,
// common.ErrInvalidRefreshToken, common.ErrorUnauthorized, a
// *validation.Error for a password the hasher refuses, or a wrapped
// common.ErrorInternal for everything else.
type AuthService struct {
	repos     repomanager.RepositoryManager
	hasher    password.Hasher
	dummyHash string
	issuer    *tokens.Issuer
	log       logging.Logger
	metrics   *obs.Metrics
	now       func() time.Time
}

// NewAuthService wires the service. metrics may be nil.
func NewAuthService(repos repomanager.RepositoryManager, hasher password.Hasher, cfg tokens.Config, log logging.Logger, metrics *obs.Metrics) *AuthService {
	s := &AuthService{
		repos:   repos,
		hasher:  hasher,
		issuer:  tokens.New(cfg, repos.RefreshTokens()),
		log:     log.With("module", "auth"),
		metrics: metrics,
		now:     time.Now,
	}
	if d, ok := hasher.(interface{ DummyHash() string }); ok {
		s.dummyHash = d.DummyHash()
	} else if h, err := hasher.Hash("dummy-password"); err != nil {
		// Unknown emails then skip the hash comparison and answer faster.
		s.log.Warn(context.Background(), "dummy hash unavailable, login timing is not equalised", "error", err)
	} else {
		s.dummyHash = h
	}
	return s
}

// Issuer exposes the token issuer, e.g. for verifying access tokens.
func (s *AuthService) Issuer() *tokens.Issuer {
	return s.issuer
}

func (s *AuthService) credentials() *CredentialStore {
	return NewCredentialStore(s.repos.Users(), s.hasher)
}

func internalErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, op, err)
}

// Register creates the user and hands out the first token pair.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (res *AuthResult, err error) {
	defer func() { s.record(ctx, obs.FlowRegister, err) }()

	user, err := s.credentials().Create(ctx, in.Email, in.Password, in.Name, "")
	if errors.Is(err, common.ErrDuplicateEmail) {
		return nil, common.ErrEmailExists
	}
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, validation.PasswordTooLong()
	}
	if err != nil {
		return nil, internalErr("create user", err)
	}

	pair, err := s.issuer.IssueTokenPair(ctx, user)
	if err != nil {
		return nil, internalErr("issue tokens", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	return &AuthResult{Token: *pair, User: user.Profile()}, nil
}

// Login checks the password. An unknown email still pays for one hash
// comparison, so both failures look alike from outside.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (res *AuthResult, err error) {
	defer func() { s.record(ctx, obs.FlowLogin, err) }()

	user, err := s.credentials().FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, internalErr("find user", err)
	}
	if user == nil {
		s.hasher.Verify(in.Password, s.dummyHash)
		return nil, common.ErrInvalidCredentials
	}
	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	pair, err := s.issuer.IssueTokenPair(ctx, user)
	if err != nil {
		return nil, internalErr("issue tokens", err)
	}
	return &AuthResult{Token: *pair, User: user.Profile()}, nil
}

// Refresh exchanges a stored refresh token for a new pair. The consumed token
// is deleted in the same transaction that stores the new one; a replay that
// loses the race to delete it is rejected.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (pair *models.TokenPair, err error) {
	defer func() { s.record(ctx, obs.FlowRefresh, err) }()

	email := NormalizeEmail(in.Email)

	rec, err := s.repos.RefreshTokens().FindOne(ctx, in.RefreshToken, email)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, internalErr("find refresh token", err)
	}
	if rec.Expired(s.now()) {
		return nil, common.ErrInvalidRefreshToken
	}

	user, err := s.credentials().FindByEmail(ctx, rec.UserEmail)
	if err != nil {
		return nil, internalErr("find user", err)
	}
	if user == nil {
		return nil, common.ErrInvalidRefreshToken
	}

	err = s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		deleted, err := tx.RefreshTokens().Delete(ctx, rec.Token)
		if err != nil {
			return internalErr("delete refresh token", err)
		}
		if !deleted {
			return common.ErrInvalidRefreshToken
		}
		pair, err = s.issuer.WithStore(tx.RefreshTokens()).IssueTokenPair(ctx, user)
		if err != nil {
			return internalErr("issue tokens", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidRefreshToken) || errors.Is(err, common.ErrorInternal) {
			return nil, err
		}
		return nil, internalErr("refresh tx", err)
	}
	return pair, nil
}

// Profile returns the public view of the user behind an access token.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	u, err := s.repos.Users().FindByID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorUnauthorized
	}
	if err != nil {
		return nil, internalErr("find user", err)
	}
	p := u.Profile()
	return &p, nil
}

// PurgeExpiredRefreshTokens removes every refresh token expired at the
// current time and reports how many were removed.
func (s *AuthService) PurgeExpiredRefreshTokens(ctx context.Context) (int64, error) {
	n, err := s.repos.RefreshTokens().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, internalErr("purge refresh tokens", err)
	}
	s.metrics.TokensSwept(n)
	if n > 0 {
		s.log.Debug(ctx, "expired refresh tokens purged", "count", n)
	}
	return n, nil
}

func (s *AuthService) record(ctx context.Context, flow string, err error) {
	switch {
	case err == nil:
		s.metrics.AuthOutcome(flow, obs.OutcomeSuccess)
	case errors.Is(err, common.ErrEmailExists):
		s.metrics.AuthOutcome(flow, obs.OutcomeConflict)
	case errors.As(err, new(*validation.Error)):
		s.metrics.AuthOutcome(flow, obs.OutcomeInvalid)
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrInvalidRefreshToken):
		s.metrics.AuthOutcome(flow, obs.OutcomeUnauthorized)
		s.log.Debug(ctx, "authentication rejected", "flow", flow)
	default:
		s.metrics.AuthOutcome(flow, obs.OutcomeError)
		s.log.Error(ctx, "authentication flow failed", "flow", flow, "error", err)
	}
}
