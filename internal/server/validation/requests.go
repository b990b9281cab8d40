package validation

const (
	passwordMinLen = 6
	nameMaxLen     = 128

	// bcrypt rejects longer input, so the limit is in bytes, not characters.
	passwordMaxBytes = 72
)

// Request fields are pointers so that a missing key can be told apart from
// an empty one.

type RegisterRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = trimmed(r.Email)

	var c collector
	c.email("email", r.Email)
	if c.present("password", r.Password) {
		c.minLen("password", *r.Password, passwordMinLen)
		c.maxBytes("password", *r.Password, passwordMaxBytes)
	}
	if r.Name != nil {
		c.maxLen("name", *r.Name, nameMaxLen)
	}
	return c.err()
}

type LoginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = trimmed(r.Email)

	var c collector
	c.email("email", r.Email)
	if c.present("password", r.Password) {
		c.maxBytes("password", *r.Password, passwordMaxBytes)
	}
	return c.err()
}

type RefreshRequest struct {
	Email        *string `json:"email"`
	RefreshToken *string `json:"refreshToken"`
}

func (r *RefreshRequest) Validate() error {
	r.Email = trimmed(r.Email)

	var c collector
	c.email("email", r.Email)
	c.present("refreshToken", r.RefreshToken)
	return c.err()
}

// Value dereferences an optional field.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
