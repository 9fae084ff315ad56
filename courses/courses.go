// Package courses holds the course catalogue records exchanged with the backend.
package courses

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-course-portal/internal/errors"
)

const (
	MaxDurationMonths = 72 // 6 years
	MaxCredits        = 10
	DefaultCredits    = 3
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Course struct {
	ID                    uuid.UUID        `json:"course_id"`
	Name                  string           `json:"course_name"`
	Code                  string           `json:"course_code"`
	DurationMonths        int              `json:"course_duration"`
	Description           string           `json:"description,omitempty"`
	Credits               int              `json:"credits"`
	IsActive              bool             `json:"is_active"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
	EnrolledStudentsCount int              `json:"enrolled_students_count"`
	Students              []StudentSummary `json:"students,omitempty"` // Detail view only
}

// StudentSummary is the basic student representation nested in course views
type StudentSummary struct {
	StudentID          uuid.UUID `json:"student_id"`
	StudentNumber      string    `json:"student_number"`
	FullName           string    `json:"full_name"`
	Email              string    `json:"email"`
	Status             string    `json:"status"`
	EnrollmentDate     string    `json:"enrollment_date"`
	ActiveCoursesCount int       `json:"active_courses_count"`
}

func (c Course) String() string {
	return fmt.Sprintf("%s - %s", c.Code, c.Name)
}

// Input is the body of course create and full update requests
type Input struct {
	Name           string `json:"course_name" validate:"required,max=255"`
	Code           string `json:"course_code" validate:"required,max=20"`
	DurationMonths int    `json:"course_duration" validate:"required,min=1,max=72"`
	Description    string `json:"description,omitempty"`
	Credits        int    `json:"credits" validate:"min=1,max=10"`
	IsActive       *bool  `json:"is_active,omitempty"`
}

// Normalize upper-cases the course code and applies the default credit count
func (in Input) Normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if in.Credits == 0 {
		in.Credits = DefaultCredits
	}
	return in
}

// Validate checks the same bounds the backend enforces
func (in Input) Validate() error {
	if err := validate.Struct(in.Normalize()); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "course %s", fieldMessage(err))
	}
	return nil
}

// Patch is the body of a partial update. Nil fields are not sent.
type Patch struct {
	Name           *string `json:"course_name,omitempty" validate:"omitempty,max=255"`
	Code           *string `json:"course_code,omitempty" validate:"omitempty,max=20"`
	DurationMonths *int    `json:"course_duration,omitempty" validate:"omitempty,min=1,max=72"`
	Description    *string `json:"description,omitempty"`
	Credits        *int    `json:"credits,omitempty" validate:"omitempty,min=1,max=10"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

func (p Patch) Validate() error {
	if p.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*p.Code))
		p.Code = &code
	}
	if err := validate.Struct(p); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "course %s", fieldMessage(err))
	}
	return nil
}

// Filter carries the list query parameters understood by GET /api/courses/
type Filter struct {
	Search         string
	IsActive       *bool
	DurationMonths int
	Credits        int
	Ordering       string
	Page           int
	PageSize       int
}

// Query renders the filter as URL query parameters, omitting unset values
func (f Filter) Query() map[string]string {
	q := map[string]string{}
	if f.Search != "" {
		q["search"] = f.Search
	}
	if f.IsActive != nil {
		q["is_active"] = strconv.FormatBool(*f.IsActive)
	}
	if f.DurationMonths > 0 {
		q["course_duration"] = strconv.Itoa(f.DurationMonths)
	}
	if f.Credits > 0 {
		q["credits"] = strconv.Itoa(f.Credits)
	}
	if f.Ordering != "" {
		q["ordering"] = f.Ordering
	}
	if f.Page > 0 {
		q["page"] = strconv.Itoa(f.Page)
	}
	if f.PageSize > 0 {
		q["page_size"] = strconv.Itoa(f.PageSize)
	}
	return q
}

// Roster is the response of GET /api/courses/{id}/students/
type Roster struct {
	Course        Course           `json:"course"`
	StudentsCount int              `json:"students_count"`
	Students      []StudentSummary `json:"students"`
}

// EnrollmentReceipt is the "student" object returned by course enroll/unenroll actions
type EnrollmentReceipt struct {
	StudentID        uuid.UUID `json:"student_id"`
	StudentNumber    string    `json:"student_number"`
	Name             string    `json:"name"`
	Course           string    `json:"course"`
	EnrollmentDate   string    `json:"enrollment_date,omitempty"`
	EnrollmentStatus string    `json:"enrollment_status"`
	Note             string    `json:"note,omitempty"`
}

func fieldMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
