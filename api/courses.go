package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-course-portal/courses"
)

type courseResponse struct {
	Message string          `json:"message"`
	Course  *courses.Course `json:"course"`
}

type receiptResponse struct {
	Message string                     `json:"message"`
	Student *courses.EnrollmentReceipt `json:"student"`
}

type studentIDRequest struct {
	StudentID uuid.UUID `json:"student_id"`
}

// CoursesService groups the /api/courses/ endpoints
type CoursesService struct {
	client *Client
}

func (s *CoursesService) List(ctx context.Context, filter courses.Filter) (*Page[courses.Course], error) {
	var page Page[courses.Course]
	if err := s.client.do(ctx, http.MethodGet, PathCourses, filter.Query(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *CoursesService) ListActive(ctx context.Context) (*Page[courses.Course], error) {
	var page Page[courses.Course]
	if err := s.client.do(ctx, http.MethodGet, PathActiveCourses, nil, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *CoursesService) Get(ctx context.Context, id uuid.UUID) (*courses.Course, error) {
	var c courses.Course
	if err := s.client.do(ctx, http.MethodGet, coursePath(id, ""), nil, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CoursesService) Create(ctx context.Context, in courses.Input) (*courses.Course, error) {
	return s.write(ctx, http.MethodPost, PathCourses, in.Normalize())
}

func (s *CoursesService) Update(ctx context.Context, id uuid.UUID, in courses.Input) (*courses.Course, error) {
	return s.write(ctx, http.MethodPut, coursePath(id, ""), in.Normalize())
}

func (s *CoursesService) PartialUpdate(ctx context.Context, id uuid.UUID, patch courses.Patch) (*courses.Course, error) {
	return s.write(ctx, http.MethodPatch, coursePath(id, ""), patch)
}

func (s *CoursesService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.do(ctx, http.MethodDelete, coursePath(id, ""), nil, nil, nil)
}

// Students lists the students enrolled in a course
func (s *CoursesService) Students(ctx context.Context, id uuid.UUID) (*courses.Roster, error) {
	var roster courses.Roster
	if err := s.client.do(ctx, http.MethodGet, coursePath(id, "students"), nil, nil, &roster); err != nil {
		return nil, err
	}
	if roster.Students == nil {
		roster.Students = []courses.StudentSummary{}
	}
	return &roster, nil
}

func (s *CoursesService) Enroll(ctx context.Context, id, studentID uuid.UUID) (*courses.EnrollmentReceipt, error) {
	return s.receipt(ctx, coursePath(id, "enroll"), studentID)
}

func (s *CoursesService) Unenroll(ctx context.Context, id, studentID uuid.UUID) (*courses.EnrollmentReceipt, error) {
	return s.receipt(ctx, coursePath(id, "unenroll"), studentID)
}

func (s *CoursesService) Activate(ctx context.Context, id uuid.UUID) (*courses.Course, error) {
	return s.write(ctx, http.MethodPost, coursePath(id, "activate"), nil)
}

func (s *CoursesService) Deactivate(ctx context.Context, id uuid.UUID) (*courses.Course, error) {
	return s.write(ctx, http.MethodPost, coursePath(id, "deactivate"), nil)
}

func (s *CoursesService) write(ctx context.Context, method, path string, body any) (*courses.Course, error) {
	var resp courseResponse
	if err := s.client.do(ctx, method, path, nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.Course == nil {
		resp.Course = &courses.Course{}
	}
	return resp.Course, nil
}

func (s *CoursesService) receipt(ctx context.Context, path string, studentID uuid.UUID) (*courses.EnrollmentReceipt, error) {
	var resp receiptResponse
	if err := s.client.do(ctx, http.MethodPost, path, nil, studentIDRequest{StudentID: studentID}, &resp); err != nil {
		return nil, err
	}
	if resp.Student == nil {
		resp.Student = &courses.EnrollmentReceipt{}
	}
	return resp.Student, nil
}
