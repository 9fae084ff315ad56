package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-course-portal/api"
	"github.com/jrsteele09/go-course-portal/api/apifake"
	"github.com/jrsteele09/go-course-portal/courses"
	ierrors "github.com/jrsteele09/go-course-portal/internal/errors"
	"github.com/jrsteele09/go-course-portal/internal/utils"
	"github.com/jrsteele09/go-course-portal/students"
	"github.com/jrsteele09/go-course-portal/users"
	"github.com/stretchr/testify/require"
)

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	resp, err := f.client.Auth.Login(ctx, users.Credentials{Username: apifake.StudentUsername, Password: apifake.StudentPassword})
	require.NoError(t, err)
	require.Equal(t, users.RoleStudent, resp.User.Role)
	require.NotEmpty(t, resp.Access)
	require.NotEmpty(t, resp.Refresh)
	require.Zero(t, f.store.Len(), "the auth surface never persists tokens itself")

	f.loginAs(t, apifake.StudentUsername)

	profile, err := f.client.Auth.UpdateProfile(ctx, users.ProfileUpdate{Phone: utils.Ptr("555-0100")})
	require.NoError(t, err)
	require.Equal(t, "Profile updated successfully", profile.Message)
	require.JSONEq(t, `"555-0100"`, string(mustField(t, profile.User, "phone")))

	cleared, err := f.client.Auth.UpdateProfile(ctx, users.ProfileUpdate{Phone: utils.Ptr("")})
	require.NoError(t, err)
	updated, err := cleared.MergeInto(users.User{FirstName: "Stale", Phone: "555-0100"})
	require.NoError(t, err)
	require.Empty(t, updated.Phone)
	require.Equal(t, "John", updated.FirstName)

	list, err := f.client.Auth.ListUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, list.Count, "students only see themselves")

	_, err = f.client.Auth.ChangePassword(ctx, users.PasswordChange{OldPassword: "nope", NewPassword: "newpass123", ConfirmPassword: "newpass123"})
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	require.Equal(t, []string{"Old password is incorrect"}, apiErr.Fields["old_password"])

	msg, err := f.client.Auth.ChangePassword(ctx, users.PasswordChange{OldPassword: apifake.StudentPassword, NewPassword: "newpass123", ConfirmPassword: "newpass123"})
	require.NoError(t, err)
	require.Equal(t, "Password changed successfully", msg.Message)

	pair, err := f.backend.IssuePair(apifake.StudentUsername)
	require.NoError(t, err)
	refreshed, err := f.client.Auth.RefreshToken(ctx, pair.Refresh)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.Access)

	require.NoError(t, f.client.Auth.Logout(ctx, pair.Refresh))
	require.True(t, f.backend.IsBlacklisted(pair.Refresh))

	refreshCalls := f.backend.RefreshCalls()
	_, err = f.client.Auth.RefreshToken(ctx, "")
	require.ErrorIs(t, err, ierrors.ErrNoRefreshToken)
	require.Equal(t, refreshCalls, f.backend.RefreshCalls())
	require.ErrorIs(t, f.client.Auth.Logout(ctx, ""), ierrors.ErrNoRefreshToken)
	require.Len(t, f.backend.RequestsTo(http.MethodPost, api.PathLogout), 1)
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	fields := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	value, ok := fields[key]
	require.True(t, ok, "missing key %q", key)
	return value
}

func TestCoursesService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.loginAs(t, apifake.AdminUsername)

	created, err := f.client.Courses.Create(ctx, courses.Input{Name: "Computer Science", Code: "cs101", DurationMonths: 36})
	require.NoError(t, err)
	require.Equal(t, "CS101", created.Code)
	require.Equal(t, courses.DefaultCredits, created.Credits)
	require.True(t, created.IsActive)

	_, err = f.client.Courses.Create(ctx, courses.Input{Name: "Duplicate", Code: "CS101", DurationMonths: 12})
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	require.Equal(t, []string{"Course with this code already exists"}, apiErr.Fields["course_code"])

	for i := 0; i < 11; i++ {
		f.backend.AddCourse(courses.Input{Name: "Elective " + string(rune('A'+i)), Code: "EL" + string(rune('A'+i)), DurationMonths: 6})
	}

	page, err := f.client.Courses.List(ctx, courses.Filter{PageSize: 10, Page: 2})
	require.NoError(t, err)
	require.Equal(t, 12, page.Count)
	require.Equal(t, 2, page.TotalPages)
	require.True(t, page.Previous.Present)
	require.False(t, page.Next.Present)
	require.Len(t, page.Results, 2)

	search, err := f.client.Courses.List(ctx, courses.Filter{Search: "computer"})
	require.NoError(t, err)
	require.Len(t, search.Results, 1)

	patched, err := f.client.Courses.PartialUpdate(ctx, created.ID, courses.Patch{Credits: utils.Ptr(5)})
	require.NoError(t, err)
	require.Equal(t, 5, patched.Credits)
	require.Equal(t, "Computer Science", patched.Name)

	deactivated, err := f.client.Courses.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)

	active, err := f.client.Courses.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, 11, active.Count)

	_, err = f.client.Courses.Activate(ctx, created.ID)
	require.NoError(t, err)

	john, ok := f.backend.StudentFor(apifake.StudentUsername)
	require.True(t, ok)

	receipt, err := f.client.Courses.Enroll(ctx, created.ID, john.ID)
	require.NoError(t, err)
	require.Equal(t, john.StudentNumber, receipt.StudentNumber)
	require.Equal(t, string(students.EnrollmentEnrolled), receipt.EnrollmentStatus)

	roster, err := f.client.Courses.Students(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, roster.StudentsCount)
	require.Equal(t, john.ID, roster.Students[0].StudentID)

	detail, err := f.client.Courses.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, detail.EnrolledStudentsCount)
	require.Len(t, detail.Students, 1)

	receipt, err = f.client.Courses.Unenroll(ctx, created.ID, john.ID)
	require.NoError(t, err)
	require.Equal(t, string(students.EnrollmentWithdrawn), receipt.EnrollmentStatus)

	require.NoError(t, f.client.Courses.Delete(ctx, created.ID))
	_, err = f.client.Courses.Get(ctx, created.ID)
	apiErr, ok = api.AsError(err)
	require.True(t, ok)
	require.True(t, apiErr.IsNotFound())
}

func TestCoursesService_StudentCannotWrite(t *testing.T) {
	f := newFixture(t, nil)
	f.loginAs(t, apifake.StudentUsername)

	_, err := f.client.Courses.Create(context.Background(), courses.Input{Name: "Hack", Code: "HCK", DurationMonths: 1})
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	require.True(t, apiErr.IsForbidden())
}

func TestStudentsService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.loginAs(t, apifake.AdminUsername)

	course := f.backend.AddCourse(courses.Input{Name: "Mathematics", Code: "MATH1", DurationMonths: 12})
	other := f.backend.AddCourse(courses.Input{Name: "Physics", Code: "PHY1", DurationMonths: 12})

	created, err := f.client.Students.Create(ctx, students.Input{
		Username:  "jane_roe",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Roe",
		Password:  "student456",
		Course:    &course.ID,
	})
	require.NoError(t, err)
	require.Regexp(t, `^STU\d{4}\d{4}$`, created.StudentNumber)
	require.Equal(t, "Jane Roe", created.FullName)
	require.True(t, created.IsEnrolledIn(course.ID))

	list, err := f.client.Students.List(ctx, students.Filter{Search: "jane"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)

	byCourse, err := f.client.Students.ListByCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Equal(t, 1, byCourse.StudentsCount)

	enrollment, err := f.client.Students.Enroll(ctx, created.ID, other.ID)
	require.NoError(t, err)
	require.Equal(t, other.ID, enrollment.Course)
	require.Equal(t, "PHY1", enrollment.CourseCode)

	_, err = f.client.Students.Enroll(ctx, created.ID, other.ID)
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	require.Equal(t, "Student is already enrolled in this course", apiErr.Message)

	withdrawn, err := f.client.Students.Unenroll(ctx, created.ID, other.ID)
	require.NoError(t, err)
	require.Equal(t, students.EnrollmentWithdrawn, withdrawn.Status)

	history, err := f.client.Students.Enrollments(ctx, created.ID, "")
	require.NoError(t, err)
	require.Equal(t, 2, history.TotalEnrollments)
	require.Equal(t, 1, history.ActiveEnrollments)

	onlyWithdrawn, err := f.client.Students.Enrollments(ctx, created.ID, students.EnrollmentWithdrawn)
	require.NoError(t, err)
	require.Len(t, onlyWithdrawn.Enrollments, 1)

	graduated, err := f.client.Students.ChangeStatus(ctx, created.ID, students.StatusGraduated)
	require.NoError(t, err)
	require.Equal(t, students.StatusGraduated, graduated.Status)

	_, err = f.client.Students.ChangeStatus(ctx, created.ID, students.Status("expelled"))
	apiErr, ok = api.AsError(err)
	require.True(t, ok)
	require.Equal(t, "Invalid status", apiErr.Message)

	active, err := f.client.Students.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, active.Count, "only john_doe is still active")

	moved, err := f.client.Students.ChangeCourse(ctx, created.ID, other.ID)
	require.NoError(t, err)
	require.True(t, moved.IsEnrolledIn(other.ID))

	updated, err := f.client.Students.PartialUpdate(ctx, created.ID, students.Update{EnrollmentDate: utils.Ptr("2024-09-01")})
	require.NoError(t, err)
	require.Equal(t, "2024-09-01", updated.EnrollmentDate)

	got, err := f.client.Students.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.StudentNumber, got.StudentNumber)

	require.NoError(t, f.client.Students.Delete(ctx, created.ID))
	_, err = f.client.Students.Get(ctx, created.ID)
	apiErr, ok = api.AsError(err)
	require.True(t, ok)
	require.True(t, apiErr.IsNotFound())
}

func TestStudentsService_MyProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	course := f.backend.AddCourse(courses.Input{Name: "Biology", Code: "BIO1", DurationMonths: 12})

	t.Run("existing record", func(t *testing.T) {
		f.loginAs(t, apifake.StudentUsername)
		me, err := f.client.Students.MyProfile(ctx)
		require.NoError(t, err)
		require.Equal(t, apifake.StudentUsername, me.UserDetails.Username)

		enrollment, err := f.client.Students.EnrollSelf(ctx, course.ID)
		require.NoError(t, err)
		require.Equal(t, course.ID, enrollment.Course)

		me, err = f.client.Students.UpdateMyProfile(ctx, students.Update{EnrollmentDate: utils.Ptr("2023-01-15")})
		require.NoError(t, err)
		require.Equal(t, "2023-01-15", me.EnrollmentDate)
		require.True(t, me.IsEnrolledIn(course.ID))
	})

	t.Run("record created on first access", func(t *testing.T) {
		f.backend.AddUser(users.User{Username: "new_student", FirstName: "New", LastName: "Student"}, "student789")
		f.loginAs(t, "new_student")

		me, err := f.client.Students.MyProfile(ctx)
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, me.ID)
		require.Equal(t, "New Student", me.FullName)
	})

	t.Run("admins have no student record", func(t *testing.T) {
		f.loginAs(t, apifake.AdminUsername)
		_, err := f.client.Students.MyProfile(ctx)
		apiErr, ok := api.AsError(err)
		require.True(t, ok)
		require.True(t, apiErr.IsNotFound())
	})
}

func TestAuthService_ConcurrentRegistrations(t *testing.T) {
	const n = 8
	f := newFixture(t, nil)
	reg := users.Registration{
		Username:        "race_student",
		Email:           "race@example.com",
		FirstName:       "Race",
		LastName:        "Student",
		Password:        "student456",
		PasswordConfirm: "student456",
	}

	var (
		wg      sync.WaitGroup
		created atomic.Int32
		taken   atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.client.Auth.Register(context.Background(), reg)
			if err == nil {
				created.Add(1)
				return
			}
			if apiErr, ok := api.AsError(err); ok && len(apiErr.Fields["username"]) > 0 {
				taken.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), created.Load())
	require.Equal(t, int32(n-1), taken.Load())
}
