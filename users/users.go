package users

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// RoleType is the coarse capability tag the backend assigns to every account.
// It only selects which surface is offered; the backend enforces authorization.
type RoleType string

const (
	RoleAdmin   RoleType = "admin"   // Manages courses, students and enrollments
	RoleStudent RoleType = "student" // Browses courses and manages their own enrollments
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type User struct {
	ID             int       `json:"id"`              // Backend primary key
	Username       string    `json:"username"`        // Unique username
	Email          string    `json:"email"`           // User's email address
	FirstName      string    `json:"first_name"`      // First name of the user
	LastName       string    `json:"last_name"`       // Last name of the user
	FullName       string    `json:"full_name"`       // Server computed "First Last"
	Role           RoleType  `json:"role"`            // admin or student
	Phone          string    `json:"phone"`           // Contact phone number
	DateOfBirth    string    `json:"date_of_birth"`   // YYYY-MM-DD
	Address        string    `json:"address"`         // Postal address
	ProfilePicture string    `json:"profile_picture"` // URL of the uploaded picture
	DateJoined     time.Time `json:"date_joined"`     // Date and time when the user registered
}

// IsAdmin returns true if the user carries the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsStudent returns true for the student role and for any role the client does not recognise
func (u *User) IsStudent() bool {
	return u != nil && !u.IsAdmin()
}

// EffectiveRole maps unknown roles onto the student surface
func (u *User) EffectiveRole() RoleType {
	if u.IsAdmin() {
		return RoleAdmin
	}
	return RoleStudent
}

// DisplayName prefers the full name and falls back to the username
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

// MergeJSON returns a copy of u with every key present in data applied on
// top. A key sent with an empty value clears the field; absent keys keep the
// current value.
func (u User) MergeJSON(data []byte) (User, error) {
	if len(data) == 0 {
		return u, nil
	}
	merged := u
	if err := json.Unmarshal(data, &merged); err != nil {
		return u, errors.Wrap(err, "merge user")
	}
	return merged, nil
}

// ValidatePasswordStrength mirrors the backend's password rules so obvious
// rejections are caught before a round trip:
// - At least 8 characters long
// - Not entirely numeric
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	for _, char := range password {
		if !unicode.IsDigit(char) {
			return nil
		}
	}
	return fmt.Errorf("password must not be entirely numeric")
}
