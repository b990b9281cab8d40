// Package refreshtokens declares and implements persistence of refresh
// tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token record.
	Create(ctx context.Context, token *models.RefreshToken) error

	// FindOne looks a token up by its value AND its owner's email. A value
	// presented with someone else's email is not found. Expired records are
	// returned; judging expiry is up to the caller.
	FindOne(ctx context.Context, token, userEmail string) (*models.RefreshToken, error)

	// Delete removes a token and reports whether it existed.
	Delete(ctx context.Context, token string) (bool, error)

	// DeleteExpired removes every token expiring at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
