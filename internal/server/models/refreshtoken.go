package models

import "time"

// RefreshToken is a stored session-renewal credential. A token is usable
// while it exists and Expires is in the future; deleting it revokes it.
type RefreshToken struct {
	Token     string
	UserID    string
	UserEmail string
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is no longer valid at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}

// TokenPair is handed out on register, login and refresh.
type TokenPair struct {
	TokenType    string `json:"tokenType"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}
