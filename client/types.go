package client

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"full_name"`
	CPF       *string    `json:"cpf,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}

func (c *Client) Validate() error {
	if strings.TrimSpace(c.FullName) == "" {
		return errors.New("full name is required")
	}
	if c.Email == "" && c.Phone == "" {
		return errors.New("email or phone is required")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return errors.New("email is invalid")
	}
	if c.CPF != nil && len(digits(*c.CPF)) != 11 {
		return errors.New("cpf must have 11 digits")
	}
	return nil
}

// NormalizedCPF strips punctuation so "123.456.789-09" and "12345678909" collide
// on the unique index.
func (c *Client) NormalizedCPF() *string {
	if c.CPF == nil {
		return nil
	}
	d := digits(*c.CPF)
	return &d
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
