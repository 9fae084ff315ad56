package courses_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-course-portal/courses"
	"github.com/jrsteele09/go-course-portal/internal/errors"
	"github.com/jrsteele09/go-course-portal/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestInput_Validate(t *testing.T) {
	valid := courses.Input{Name: "Computer Science", Code: "cs101", DurationMonths: 36, Credits: 4}

	tests := []struct {
		name    string
		modify  func(in *courses.Input)
		wantErr string
	}{
		{"valid", func(in *courses.Input) {}, ""},
		{"default credits", func(in *courses.Input) { in.Credits = 0 }, ""},
		{"missing name", func(in *courses.Input) { in.Name = " " }, "Name is required"},
		{"missing code", func(in *courses.Input) { in.Code = "" }, "Code is required"},
		{"zero duration", func(in *courses.Input) { in.DurationMonths = 0 }, "DurationMonths is required"},
		{"duration too long", func(in *courses.Input) { in.DurationMonths = 73 }, "DurationMonths cannot exceed 72"},
		{"too many credits", func(in *courses.Input) { in.Credits = 11 }, "Credits cannot exceed 10"},
		{"negative credits", func(in *courses.Input) { in.Credits = -1 }, "Credits must be at least 1"},
		{"code too long", func(in *courses.Input) { in.Code = "ABCDEFGHIJKLMNOPQRSTU" }, "Code cannot exceed 20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.modify(&in)
			err := in.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errors.ErrInvalidInput)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestInput_Normalize(t *testing.T) {
	in := courses.Input{Name: "  Data Science ", Code: " ds200 ", DurationMonths: 12}.Normalize()
	require.Equal(t, "Data Science", in.Name)
	require.Equal(t, "DS200", in.Code)
	require.Equal(t, courses.DefaultCredits, in.Credits)
}

func TestPatch_Validate(t *testing.T) {
	require.NoError(t, courses.Patch{}.Validate())
	require.NoError(t, courses.Patch{Credits: utils.Ptr(5)}.Validate())
	require.ErrorIs(t, courses.Patch{DurationMonths: utils.Ptr(0)}.Validate(), errors.ErrInvalidInput)
	require.ErrorIs(t, courses.Patch{Credits: utils.Ptr(12)}.Validate(), errors.ErrInvalidInput)

	body, err := json.Marshal(courses.Patch{IsActive: utils.Ptr(false)})
	require.NoError(t, err)
	require.JSONEq(t, `{"is_active": false}`, string(body))
}

func TestFilter_Query(t *testing.T) {
	require.Empty(t, courses.Filter{}.Query())

	q := courses.Filter{Search: "math", IsActive: utils.Ptr(true), Credits: 3, Page: 2, PageSize: 10, Ordering: "-created_at"}.Query()
	require.Equal(t, map[string]string{
		"search":    "math",
		"is_active": "true",
		"credits":   "3",
		"page":      "2",
		"page_size": "10",
		"ordering":  "-created_at",
	}, q)
}

func TestCourse_Decode(t *testing.T) {
	id := uuid.New()
	raw := `{
		"course_id": "` + id.String() + `",
		"course_name": "Computer Science",
		"course_code": "CS101",
		"course_duration": 36,
		"description": null,
		"credits": 4,
		"is_active": true,
		"created_at": "2024-09-01T08:00:00Z",
		"updated_at": "2024-09-01T08:00:00Z",
		"enrolled_students_count": 2
	}`

	var c courses.Course
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	require.Equal(t, id, c.ID)
	require.Equal(t, "CS101 - Computer Science", c.String())
	require.Equal(t, 2, c.EnrolledStudentsCount)
	require.Empty(t, c.Description)
}
