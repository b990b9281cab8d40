// Package validation checks request bodies before they reach the service.
// Every failing field is reported, in the order the fields are declared.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const LocationBody = "body"

// Error types, reported alongside the human readable messages.
const (
	TypeRequired = "any.required"
	TypeEmpty    = "any.empty"
	TypeEmail    = "string.email"
	TypeMin      = "string.min"
	TypeMax      = "string.max"
)

type FieldError struct {
	Field    string
	Location string
	Messages []string
	Types    []string
}

// Error is returned when at least one field failed.
type Error struct {
	Errors []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, strings.Join(fe.Messages, "; "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type collector struct {
	errs []FieldError
}

func (c *collector) add(field, typ, msg string) {
	for i := range c.errs {
		if c.errs[i].Field == field {
			c.errs[i].Messages = append(c.errs[i].Messages, msg)
			c.errs[i].Types = append(c.errs[i].Types, typ)
			return
		}
	}
	c.errs = append(c.errs, FieldError{
		Field:    field,
		Location: LocationBody,
		Messages: []string{msg},
		Types:    []string{typ},
	})
}

func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &Error{Errors: c.errs}
}

// present reports a missing or empty value and returns false in that case.
func (c *collector) present(field string, v *string) bool {
	switch {
	case v == nil:
		c.add(field, TypeRequired, fmt.Sprintf("%q is required", field))
		return false
	case *v == "":
		c.add(field, TypeEmpty, fmt.Sprintf("%q is not allowed to be empty", field))
		return false
	}
	return true
}

func (c *collector) email(field string, v *string) {
	if !c.present(field, v) {
		return
	}
	if !IsEmail(*v) {
		c.add(field, TypeEmail, fmt.Sprintf("%q must be a valid email", field))
	}
}

func (c *collector) minLen(field, v string, n int) {
	if utf8.RuneCountInString(v) < n {
		c.add(field, TypeMin, fmt.Sprintf("%q length must be at least %d characters long", field, n))
	}
}

func (c *collector) maxLen(field, v string, n int) {
	if utf8.RuneCountInString(v) > n {
		c.add(field, TypeMax, fmt.Sprintf("%q length must be less than or equal to %d characters long", field, n))
	}
}

func (c *collector) maxBytes(field, v string, n int) {
	if len(v) > n {
		c.add(field, TypeMax, fmt.Sprintf("%q length must be less than or equal to %d bytes long", field, n))
	}
}

// PasswordTooLong is the error reported for a password over the hashing
// limit, for callers that learn about it only from the hasher.
func PasswordTooLong() *Error {
	var c collector
	c.maxBytes("password", strings.Repeat("x", passwordMaxBytes+1), passwordMaxBytes)
	return &Error{Errors: c.errs}
}

// IsEmail accepts a bare address (no display name) whose domain has at
// least two labels.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return true
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
