// Package users declares and implements persistence of user records.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository stores user records. Email is unique; implementations enforce
// it at the storage level and report violations as common.ErrDuplicateEmail.
type Repository interface {
	// Create persists user and fills in CreatedAt.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByEmail returns common.ErrorNotFound when no user has that email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns common.ErrorNotFound when the user does not exist.
	FindByID(ctx context.Context, id string) (*models.User, error)
}
