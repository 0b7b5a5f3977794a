package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer is a registered shopper, linked to the OAuth identity by AuthSubject.
type Customer struct {
	ID          uuid.UUID `json:"id"`
	AuthSubject string    `json:"-"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// IdentityProfile is what the OAuth provider knows about a user.
type IdentityProfile struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

type GetMeRequest struct{}

func (r *GetMeRequest) Validate() error {
	return nil
}

type UpdateMeRequest struct {
	FirstName string `json:"first_name" validate:"required,max=80"`
	LastName  string `json:"last_name" validate:"max=80"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
}

func (r *UpdateMeRequest) Validate() error {
	return validate.Struct(r)
}
