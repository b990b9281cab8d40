// Package password hashes and verifies user passwords.
package password

import (
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// Hasher is a one-way, salted password hash. Verify must compare in
// constant time.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

var errEmptyPassword = errors.New("password is empty")

// Bcrypt implements Hasher with bcrypt. The salt lives inside the hash.
type Bcrypt struct {
	cost  int
	dummy []byte
}

var _ Hasher = (*Bcrypt)(nil)

// NewBcrypt returns a Bcrypt hasher with the given cost. It also prepares a
// hash of a random secret for DummyHash.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, bcrypt.InvalidCostError(cost)
	}
	secret, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, err
	}
	return &Bcrypt{cost: cost, dummy: dummy}, nil
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	if plain == "" {
		return "", errEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (b *Bcrypt) Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// DummyHash is a valid hash that no user password matches. Verifying against
// it costs the same as a real check, which keeps unknown-email logins as
// slow as wrong-password ones.
func (b *Bcrypt) DummyHash() string {
	return string(b.dummy)
}
