package students_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-course-portal/internal/errors"
	"github.com/jrsteele09/go-course-portal/internal/utils"
	"github.com/jrsteele09/go-course-portal/students"
	"github.com/jrsteele09/go-course-portal/users"
	"github.com/stretchr/testify/require"
)

func roster() []students.Student {
	return []students.Student{
		{StudentNumber: "STU20240001", FullName: "John Doe", Email: "john@example.com", Status: students.StatusActive},
		{StudentNumber: "STU20240002", FullName: "Jane Roe", Email: "jane@example.com", Status: students.StatusGraduated},
		{
			StudentNumber: "STU20240003",
			FullName:      "Sam Poe",
			Status:        students.StatusActive,
			UserDetails:   &users.User{FirstName: "Samuel", LastName: "Poe", Email: "sam.poe@uni.example"},
		},
		{StudentNumber: "STU20240004", FullName: "Ada Moe", Email: "ada@example.com", Status: students.StatusDropped},
	}
}

func numbers(list []students.Student) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.StudentNumber)
	}
	return out
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		status   students.Status
		expected []string
	}{
		{"no filters returns everything", "", "", []string{"STU20240001", "STU20240002", "STU20240003", "STU20240004"}},
		{"case-insensitive name", "JOHN", "", []string{"STU20240001"}},
		{"student number", "0002", "", []string{"STU20240002"}},
		{"nested user details", "samuel", "", []string{"STU20240003"}},
		{"nested email", "uni.example", "", []string{"STU20240003"}},
		{"status only", "", students.StatusActive, []string{"STU20240001", "STU20240003"}},
		{"term and status", "example.com", students.StatusActive, []string{"STU20240001"}},
		{"whitespace term is ignored", "   ", students.StatusDropped, []string{"STU20240004"}},
		{"no match", "zzz", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := roster()
			got := students.Search(list, tt.term, tt.status)
			require.Equal(t, tt.expected, numbers(got))
			require.Len(t, list, 4)
		})
	}
}

func TestParseStatus(t *testing.T) {
	status, err := students.ParseStatus("graduated")
	require.NoError(t, err)
	require.Equal(t, students.StatusGraduated, status)

	_, err = students.ParseStatus("expelled")
	require.ErrorIs(t, err, errors.ErrInvalidStatus)
}

func TestInput_Validate(t *testing.T) {
	in := students.Input{
		Username:  "new_student",
		Email:     "new@example.com",
		FirstName: "New",
		LastName:  "Student",
		Password:  "student123",
	}
	require.NoError(t, in.Validate())

	missing := in
	missing.FirstName = ""
	require.ErrorIs(t, missing.Validate(), errors.ErrInvalidInput)

	weak := in
	weak.Password = "1234"
	require.ErrorContains(t, weak.Validate(), "at least 8")
}

func TestUpdate_Validate(t *testing.T) {
	require.NoError(t, students.Update{Status: utils.Ptr(students.StatusInactive)}.Validate())
	require.ErrorIs(t, students.Update{Status: utils.Ptr(students.Status("expelled"))}.Validate(), errors.ErrInvalidInput)
}

func TestStudent_IsEnrolledIn(t *testing.T) {
	courseID := uuid.New()
	s := students.Student{ActiveEnrollments: []students.Enrollment{
		{Course: courseID, Status: students.EnrollmentEnrolled},
		{Course: uuid.New(), Status: students.EnrollmentWithdrawn},
	}}
	require.True(t, s.IsEnrolledIn(courseID))
	require.False(t, s.IsEnrolledIn(uuid.New()))
}

func TestFilter_Query(t *testing.T) {
	courseID := uuid.New()
	q := students.Filter{Search: "doe", Status: students.StatusActive, Course: courseID, PageSize: 50}.Query()
	require.Equal(t, map[string]string{
		"search":    "doe",
		"status":    "active",
		"course":    courseID.String(),
		"page_size": "50",
	}, q)
}
