package apifake

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-course-portal/courses"
	"github.com/jrsteele09/go-course-portal/students"
)

// createCourse must be called with the lock held
func (b *Backend) createCourse(in courses.Input) *courses.Course {
	now := NowTimeFunc().UTC()
	c := &courses.Course{
		ID:             uuid.New(),
		Name:           in.Name,
		Code:           in.Code,
		DurationMonths: in.DurationMonths,
		Description:    in.Description,
		Credits:        in.Credits,
		IsActive:       in.IsActive == nil || *in.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	b.courses[c.ID] = c
	return c
}

// courseView must be called with at least a read lock held
func (b *Backend) courseView(c *courses.Course) courses.Course {
	view := *c
	view.EnrolledStudentsCount = len(b.enrolledIn(c.ID))
	return view
}

// enrolledIn returns the active enrollments of a course
func (b *Backend) enrolledIn(courseID uuid.UUID) []*students.Enrollment {
	out := []*students.Enrollment{}
	for _, e := range b.enrollments {
		if e.Course == courseID && e.Status == students.EnrollmentEnrolled {
			out = append(out, e)
		}
	}
	return out
}

// validateCourse returns the field errors for a course after a patch
func (b *Backend) validateCourse(c courses.Course) map[string]any {
	fields := map[string]any{}
	if c.Name == "" {
		fields["course_name"] = []string{"This field is required."}
	}
	if c.Code == "" {
		fields["course_code"] = []string{"Course code is required"}
	}
	for _, other := range b.courses {
		if other.ID != c.ID && other.Code == c.Code {
			fields["course_code"] = []string{"Course with this code already exists"}
		}
	}
	switch {
	case c.DurationMonths <= 0:
		fields["course_duration"] = []string{"Course duration must be greater than 0"}
	case c.DurationMonths > courses.MaxDurationMonths:
		fields["course_duration"] = []string{"Course duration cannot exceed 72 months"}
	}
	switch {
	case c.Credits <= 0:
		fields["credits"] = []string{"Credits must be greater than 0"}
	case c.Credits > courses.MaxCredits:
		fields["credits"] = []string{"Credits cannot exceed 10"}
	}
	return fields
}

func applyCoursePatch(c *courses.Course, p courses.Patch) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Code != nil {
		c.Code = strings.ToUpper(strings.TrimSpace(*p.Code))
	}
	if p.DurationMonths != nil {
		c.DurationMonths = *p.DurationMonths
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Credits != nil {
		c.Credits = *p.Credits
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}

// lookupCourse must be called with at least a read lock held
func (b *Backend) lookupCourse(w http.ResponseWriter, r *http.Request) (*courses.Course, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("Course not found"))
		return nil, false
	}
	c, ok := b.courses[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("Course not found"))
		return nil, false
	}
	return c, true
}

func (b *Backend) sortedCourses(ordering string) []courses.Course {
	list := make([]courses.Course, 0, len(b.courses))
	for _, c := range b.courses {
		list = append(list, b.courseView(c))
	}

	desc := strings.HasPrefix(ordering, "-")
	key := strings.TrimPrefix(ordering, "-")
	less := func(i, j int) bool {
		switch key {
		case "course_code":
			return list[i].Code < list[j].Code
		case "created_at":
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		case "credits":
			return list[i].Credits < list[j].Credits
		default:
			return list[i].Name < list[j].Name
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
	return list
}

func (b *Backend) listCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ordering := q.Get("ordering")
	if ordering == "" {
		ordering = "course_name"
	}

	b.lock.RLock()
	all := b.sortedCourses(ordering)
	b.lock.RUnlock()

	search := strings.ToLower(q.Get("search"))
	filtered := []courses.Course{}
	for _, c := range all {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Code), search) &&
			!strings.Contains(strings.ToLower(c.Description), search) {
			continue
		}
		if v := q.Get("is_active"); v != "" {
			if active, err := strconv.ParseBool(v); err == nil && c.IsActive != active {
				continue
			}
		}
		if v := queryInt(r, "course_duration", 0); v > 0 && c.DurationMonths != v {
			continue
		}
		if v := queryInt(r, "credits", 0); v > 0 && c.Credits != v {
			continue
		}
		filtered = append(filtered, c)
	}

	writeJSON(w, http.StatusOK, paginate(r, filtered))
}

func (b *Backend) listActiveCourses(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	all := b.sortedCourses("course_name")
	b.lock.RUnlock()

	active := []courses.Course{}
	for _, c := range all {
		if c.IsActive {
			active = append(active, c)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(active), "results": active})
}

func (b *Backend) createCourseHandler(w http.ResponseWriter, r *http.Request) {
	var in courses.Input
	if !decode(w, r, &in) {
		return
	}
	in = in.Normalize()

	b.lock.Lock()
	defer b.lock.Unlock()

	candidate := courses.Course{Name: in.Name, Code: in.Code, DurationMonths: in.DurationMonths, Credits: in.Credits}
	if fields := b.validateCourse(candidate); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	c := b.createCourse(in)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Course created successfully",
		"course":  b.courseView(c),
	})
}

func (b *Backend) getCourse(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	c, ok := b.lookupCourse(w, r)
	if !ok {
		return
	}
	view := b.courseView(c)
	view.Students = b.courseStudentSummaries(c.ID)
	writeJSON(w, http.StatusOK, view)
}

func (b *Backend) updateCourse(w http.ResponseWriter, r *http.Request) {
	var patch courses.Patch
	if !decode(w, r, &patch) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	c, ok := b.lookupCourse(w, r)
	if !ok {
		return
	}
	updated := *c
	applyCoursePatch(&updated, patch)
	if fields := b.validateCourse(updated); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	updated.UpdatedAt = NowTimeFunc().UTC()
	*c = updated

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Course updated successfully",
		"course":  b.courseView(c),
	})
}

func (b *Backend) deleteCourse(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()

	c, ok := b.lookupCourse(w, r)
	if !ok {
		return
	}
	delete(b.courses, c.ID)

	kept := b.enrollments[:0]
	for _, e := range b.enrollments {
		if e.Course != c.ID {
			kept = append(kept, e)
		}
	}
	b.enrollments = kept
	writeJSON(w, http.StatusNoContent, nil)
}

// courseStudentSummaries must be called with at least a read lock held
func (b *Backend) courseStudentSummaries(courseID uuid.UUID) []courses.StudentSummary {
	out := []courses.StudentSummary{}
	for _, e := range b.enrolledIn(courseID) {
		if s, ok := b.students[e.Student]; ok {
			out = append(out, b.studentSummary(s))
		}
	}
	return out
}

func (b *Backend) courseStudents(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	c, ok := b.lookupCourse(w, r)
	if !ok {
		return
	}
	summaries := b.courseStudentSummaries(c.ID)
	writeJSON(w, http.StatusOK, courses.Roster{
		Course:        b.courseView(c),
		StudentsCount: len(summaries),
		Students:      summaries,
	})
}

type studentIDBody struct {
	StudentID string `json:"student_id"`
}

func (b *Backend) courseEnroll(w http.ResponseWriter, r *http.Request) {
	b.courseEnrollment(w, r, true)
}

func (b *Backend) courseUnenroll(w http.ResponseWriter, r *http.Request) {
	b.courseEnrollment(w, r, false)
}

func (b *Backend) courseEnrollment(w http.ResponseWriter, r *http.Request, enroll bool) {
	var body studentIDBody
	if !decode(w, r, &body) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	c, ok := b.lookupCourse(w, r)
	if !ok {
		return
	}
	if body.StudentID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("student_id is required"))
		return
	}
	studentID, err := uuid.Parse(body.StudentID)
	s, found := b.students[studentID]
	if err != nil || !found {
		writeJSON(w, http.StatusNotFound, errorBody("Student not found"))
		return
	}

	var (
		e       *students.Enrollment
		message string
	)
	if enroll {
		if e, err = b.enroll(s, c); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		message = "Student enrolled in " + c.Name
	} else {
		if e, err = b.unenroll(s, c); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		message = "Student unenrolled from " + c.Name
	}

	view := b.studentView(s)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"student": courses.EnrollmentReceipt{
			StudentID:        s.id,
			StudentNumber:    s.number,
			Name:             view.FullName,
			Course:           c.Name,
			EnrollmentDate:   e.EnrollmentDate.Format(time.DateOnly),
			EnrollmentStatus: string(e.Status),
		},
	})
}

func (b *Backend) setCourseActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.lock.Lock()
		defer b.lock.Unlock()

		c, ok := b.lookupCourse(w, r)
		if !ok {
			return
		}
		c.IsActive = active
		c.UpdatedAt = NowTimeFunc().UTC()

		message := "Course activated successfully"
		if !active {
			message = "Course deactivated successfully"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": message,
			"course":  b.courseView(c),
		})
	}
}
