package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Roles lists the accepted values of User.Role.
var Roles = []string{RoleUser, RoleAdmin}

// User is the persisted identity record. PasswordHash never leaves the
// server; use Profile for anything returned to a caller.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
}

// Profile is the public view of a User.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile strips the password hash.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
