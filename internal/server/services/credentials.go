// Package services contains server-side business logic: the credential store
// and the register/login/refresh flows built on it.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

var ErrUnknownRole = errors.New("unknown role")

// CredentialStore creates and looks up users. Emails are normalized before
// they reach the repository, so uniqueness is case-insensitive.
type CredentialStore struct {
	repo   users.Repository
	hasher password.Hasher
}

func NewCredentialStore(repo users.Repository, hasher password.Hasher) *CredentialStore {
	return &CredentialStore{repo: repo, hasher: hasher}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create hashes plain and persists a new user. An empty role means
// models.RoleUser. A taken email fails with common.ErrDuplicateEmail.
func (s *CredentialStore) Create(ctx context.Context, email, plain, name, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	if !slices.Contains(models.Roles, role) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	return s.repo.Create(ctx, u)
}

// FindByEmail returns (nil, nil) when no user has that email.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
