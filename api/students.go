package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-course-portal/students"
	"github.com/pkg/errors"
)

type studentResponse struct {
	Message string            `json:"message"`
	Student *students.Student `json:"student"`
	Data    *students.Student `json:"data"` // my-profile when the backend creates the record on first access
}

func (r studentResponse) record() *students.Student {
	switch {
	case r.Student != nil:
		return r.Student
	case r.Data != nil:
		return r.Data
	default:
		return &students.Student{}
	}
}

type enrollmentResponse struct {
	Message    string               `json:"message"`
	Enrollment *students.Enrollment `json:"enrollment"`
}

type courseIDRequest struct {
	CourseID uuid.UUID `json:"course_id"`
}

type statusRequest struct {
	Status students.Status `json:"status"`
}

// StudentsService groups the /api/students/ endpoints
type StudentsService struct {
	client *Client
}

func (s *StudentsService) List(ctx context.Context, filter students.Filter) (*Page[students.Student], error) {
	var page Page[students.Student]
	if err := s.client.do(ctx, http.MethodGet, PathStudents, filter.Query(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *StudentsService) ListActive(ctx context.Context) (*Page[students.Student], error) {
	var page Page[students.Student]
	if err := s.client.do(ctx, http.MethodGet, PathActiveStudents, nil, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *StudentsService) ListByCourse(ctx context.Context, courseID uuid.UUID) (*students.CourseRoster, error) {
	var roster students.CourseRoster
	query := map[string]string{"course_id": courseID.String()}
	if err := s.client.do(ctx, http.MethodGet, PathStudentsByCourse, query, nil, &roster); err != nil {
		return nil, err
	}
	return &roster, nil
}

func (s *StudentsService) Get(ctx context.Context, id uuid.UUID) (*students.Student, error) {
	var st students.Student
	if err := s.client.do(ctx, http.MethodGet, studentPath(id, ""), nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Create registers a user account and its student record in one call
func (s *StudentsService) Create(ctx context.Context, in students.Input) (*students.Student, error) {
	return s.write(ctx, http.MethodPost, PathStudents, in)
}

func (s *StudentsService) Update(ctx context.Context, id uuid.UUID, update students.Update) (*students.Student, error) {
	return s.write(ctx, http.MethodPut, studentPath(id, ""), update)
}

func (s *StudentsService) PartialUpdate(ctx context.Context, id uuid.UUID, update students.Update) (*students.Student, error) {
	return s.write(ctx, http.MethodPatch, studentPath(id, ""), update)
}

func (s *StudentsService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.do(ctx, http.MethodDelete, studentPath(id, ""), nil, nil, nil)
}

func (s *StudentsService) ChangeStatus(ctx context.Context, id uuid.UUID, status students.Status) (*students.Student, error) {
	return s.write(ctx, http.MethodPost, studentPath(id, "change-status"), statusRequest{Status: status})
}

func (s *StudentsService) Enroll(ctx context.Context, id, courseID uuid.UUID) (*students.Enrollment, error) {
	return s.enrollment(ctx, http.MethodPost, studentPath(id, "enroll"), courseID)
}

// Unenroll withdraws the student; the backend reads the course from a DELETE body
func (s *StudentsService) Unenroll(ctx context.Context, id, courseID uuid.UUID) (*students.Enrollment, error) {
	return s.enrollment(ctx, http.MethodDelete, studentPath(id, "enroll"), courseID)
}

// Enrollments returns the enrollment history, optionally narrowed to one status
func (s *StudentsService) Enrollments(ctx context.Context, id uuid.UUID, status students.EnrollmentStatus) (*students.EnrollmentHistory, error) {
	var query map[string]string
	if status != "" {
		query = map[string]string{"status": string(status)}
	}
	var history students.EnrollmentHistory
	if err := s.client.do(ctx, http.MethodGet, studentPath(id, "enrollments"), query, nil, &history); err != nil {
		return nil, err
	}
	if history.Enrollments == nil {
		history.Enrollments = []students.Enrollment{}
	}
	return &history, nil
}

// MyProfile returns the caller's student record. The backend answers with
// the bare record, or with a wrapped one when it created the record on this call.
func (s *StudentsService) MyProfile(ctx context.Context) (*students.Student, error) {
	var body json.RawMessage
	if err := s.client.do(ctx, http.MethodGet, PathMyProfile, nil, nil, &body); err != nil {
		return nil, err
	}

	var wrapped studentResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && (wrapped.Student != nil || wrapped.Data != nil) {
		return wrapped.record(), nil
	}

	var st students.Student
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, errors.Wrap(err, "decode my profile")
	}
	return &st, nil
}

func (s *StudentsService) UpdateMyProfile(ctx context.Context, update students.Update) (*students.Student, error) {
	return s.write(ctx, http.MethodPut, PathMyProfile, update)
}

// EnrollSelf enrolls the caller in a course
func (s *StudentsService) EnrollSelf(ctx context.Context, courseID uuid.UUID) (*students.Enrollment, error) {
	return s.enrollment(ctx, http.MethodPost, PathMyProfileEnroll, courseID)
}

// ChangeCourse enrolls the student in another course.
//
// Deprecated: use Enroll; the backend keeps this endpoint for older clients.
func (s *StudentsService) ChangeCourse(ctx context.Context, id, courseID uuid.UUID) (*students.Student, error) {
	return s.write(ctx, http.MethodPost, studentPath(id, "change-course"), courseIDRequest{CourseID: courseID})
}

func (s *StudentsService) write(ctx context.Context, method, path string, body any) (*students.Student, error) {
	var resp studentResponse
	if err := s.client.do(ctx, method, path, nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.record(), nil
}

func (s *StudentsService) enrollment(ctx context.Context, method, path string, courseID uuid.UUID) (*students.Enrollment, error) {
	var resp enrollmentResponse
	if err := s.client.do(ctx, method, path, nil, courseIDRequest{CourseID: courseID}, &resp); err != nil {
		return nil, err
	}
	if resp.Enrollment == nil {
		resp.Enrollment = &students.Enrollment{}
	}
	return resp.Enrollment, nil
}
