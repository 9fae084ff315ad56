package users

import (
	"fmt"

	"github.com/jrsteele09/go-course-portal/internal/errors"
)

// Credentials is the body of POST /api/auth/login/
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the body of POST /api/auth/register/
type Registration struct {
	Username        string   `json:"username" validate:"required,max=150"`
	Email           string   `json:"email" validate:"required,email"`
	FirstName       string   `json:"first_name" validate:"required"`
	LastName        string   `json:"last_name" validate:"required"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required"`
	Role            RoleType `json:"role,omitempty" validate:"omitempty,oneof=admin student"`
	Phone           string   `json:"phone,omitempty" validate:"omitempty,max=15"`
	DateOfBirth     string   `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Address         string   `json:"address,omitempty"`
}

// ProfileUpdate is the body of PUT /api/auth/profile/. Nil fields are left unchanged.
type ProfileUpdate struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=15"`
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Address     *string `json:"address,omitempty"`
}

// Apply sets every non-nil field of the update on u. A pointer to an empty
// string clears the field.
func (p ProfileUpdate) Apply(u *User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Email, p.Email)
	set(&u.FirstName, p.FirstName)
	set(&u.LastName, p.LastName)
	set(&u.Phone, p.Phone)
	set(&u.DateOfBirth, p.DateOfBirth)
	set(&u.Address, p.Address)
}

// PasswordChange is the body of POST /api/auth/change-password/
type PasswordChange struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

func (c Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: must include username and password", errors.ErrInvalidInput)
	}
	return nil
}

func (r Registration) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "%s", err.Error())
	}
	if r.Password != r.PasswordConfirm {
		return errors.ErrPasswordsMismatch
	}
	return ValidatePasswordStrength(r.Password)
}

func (p ProfileUpdate) Validate() error {
	if err := validate.Struct(p); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "%s", err.Error())
	}
	return nil
}

func (p PasswordChange) Validate() error {
	if err := validate.Struct(p); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "%s", err.Error())
	}
	if p.NewPassword != p.ConfirmPassword {
		return errors.ErrPasswordsMismatch
	}
	return ValidatePasswordStrength(p.NewPassword)
}
