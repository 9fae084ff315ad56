package students

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-course-portal/courses"
	"github.com/jrsteele09/go-course-portal/internal/errors"
	"github.com/jrsteele09/go-course-portal/users"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Status is the lifecycle state of a student record
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusGraduated Status = "graduated"
	StatusDropped   Status = "dropped"
)

var AllStatuses = []Status{StatusActive, StatusInactive, StatusGraduated, StatusDropped}

// ParseStatus accepts one of the backend's status choices
func ParseStatus(s string) (Status, error) {
	for _, status := range AllStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w %q", errors.ErrInvalidStatus, s)
}

// EnrollmentStatus is the state of one student/course enrollment
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentWithdrawn EnrollmentStatus = "withdrawn"
	EnrollmentFailed    EnrollmentStatus = "failed"
	EnrollmentSuspended EnrollmentStatus = "suspended"
)

type Student struct {
	ID                   uuid.UUID        `json:"student_id"`
	StudentNumber        string           `json:"student_number"`
	FullName             string           `json:"full_name"`
	Email                string           `json:"email"`
	Status               Status           `json:"status"`
	EnrollmentDate       string           `json:"enrollment_date"` // YYYY-MM-DD
	User                 int              `json:"user,omitempty"`
	Courses              []uuid.UUID      `json:"courses,omitempty"`
	UserDetails          *users.User      `json:"user_details,omitempty"`
	ActiveEnrollments    []Enrollment     `json:"active_enrollments,omitempty"`
	ActiveCourses        []courses.Course `json:"active_courses,omitempty"`
	ActiveCoursesCount   int              `json:"active_courses_count,omitempty"`
	TotalCreditsEnrolled int              `json:"total_credits_enrolled"`
	TotalCreditsEarned   int              `json:"total_credits_earned"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

func (s Student) String() string {
	return fmt.Sprintf("%s - %s", s.StudentNumber, s.FullName)
}

// IsEnrolledIn reports whether one of the active enrollments is for courseID
func (s Student) IsEnrolledIn(courseID uuid.UUID) bool {
	for _, e := range s.ActiveEnrollments {
		if e.Course == courseID && e.Status == EnrollmentEnrolled {
			return true
		}
	}
	return false
}

type Enrollment struct {
	ID             uuid.UUID        `json:"enrollment_id"`
	Student        uuid.UUID        `json:"student"`
	Course         uuid.UUID        `json:"course"`
	CourseName     string           `json:"course_name"`
	CourseCode     string           `json:"course_code"`
	CourseDetails  *courses.Course  `json:"course_details,omitempty"`
	EnrollmentDate time.Time        `json:"enrollment_date"`
	Status         EnrollmentStatus `json:"status"`
	Grade          string           `json:"grade,omitempty"`
	CompletionDate *time.Time       `json:"completion_date,omitempty"`
	CreditsEarned  *int             `json:"credits_earned,omitempty"`
}

// Input is the body of POST /api/students/; it creates the user account and the student together
type Input struct {
	Username       string     `json:"username" validate:"required,max=150"`
	Email          string     `json:"email" validate:"required,email"`
	FirstName      string     `json:"first_name" validate:"required"`
	LastName       string     `json:"last_name" validate:"required"`
	Password       string     `json:"password" validate:"required"`
	PhoneNumber    string     `json:"phone_number,omitempty" validate:"omitempty,max=15"`
	DateOfBirth    string     `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Address        string     `json:"address,omitempty"`
	Course         *uuid.UUID `json:"course,omitempty"` // Optional initial enrollment
	EnrollmentDate string     `json:"enrollment_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (in Input) Validate() error {
	if err := validate.Struct(in); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "student %s", err.Error())
	}
	return users.ValidatePasswordStrength(in.Password)
}

// Update is the body of student update requests. Nil fields are not sent.
type Update struct {
	EnrollmentDate *string `json:"enrollment_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status         *Status `json:"status,omitempty" validate:"omitempty,oneof=active inactive graduated dropped"`
}

func (u Update) Validate() error {
	if err := validate.Struct(u); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "student %s", err.Error())
	}
	return nil
}

// Filter carries the list query parameters understood by GET /api/students/
type Filter struct {
	Search   string
	Status   Status
	Course   uuid.UUID
	Ordering string
	Page     int
	PageSize int
}

func (f Filter) Query() map[string]string {
	q := map[string]string{}
	if f.Search != "" {
		q["search"] = f.Search
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.Course != uuid.Nil {
		q["course"] = f.Course.String()
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

// EnrollmentHistory is the response of GET /api/students/{id}/enrollments/
type EnrollmentHistory struct {
	StudentID         uuid.UUID    `json:"student_id"`
	StudentName       string       `json:"student_name"`
	TotalEnrollments  int          `json:"total_enrollments"`
	ActiveEnrollments int          `json:"active_enrollments"`
	Enrollments       []Enrollment `json:"enrollments"`
}

// CourseRoster is the response of GET /api/students/by-course/
type CourseRoster struct {
	CourseID      uuid.UUID                `json:"course_id"`
	StudentsCount int                      `json:"students_count"`
	Students      []courses.StudentSummary `json:"students"`
}
